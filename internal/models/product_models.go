package models

type Product struct {
	ID               string `json:"id" dynamodbav:"id"`
	Name             string `json:"name" dynamodbav:"name"`
	Description      string `json:"description,omitempty" dynamodbav:"description,omitempty"`
	ShortDescription string `json:"short_description,omitempty" dynamodbav:"short_description,omitempty"`
}

// PromptDescription prefers the long description and falls back to the short one.
func (p Product) PromptDescription() string {
	if p.Description != "" {
		return p.Description
	}
	return p.ShortDescription
}
