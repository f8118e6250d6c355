package provider

import (
	"fmt"
	"regexp"
	"strings"
)

// Shape checks only; nothing here proves a key is live.
var credentialShapes = map[Kind]*regexp.Regexp{
	OpenAI:    regexp.MustCompile(`^sk-[A-Za-z0-9_\-]{20,}$`),
	Anthropic: regexp.MustCompile(`^sk-ant-[A-Za-z0-9_\-]{20,}$`),
	Google:    regexp.MustCompile(`^AIza[A-Za-z0-9_\-]{35}$`),
	Cohere:    regexp.MustCompile(`^[A-Za-z0-9]{20,}$`),
	Mistral:   regexp.MustCompile(`^[A-Za-z0-9]{32}$`),
}

// ValidateCredential checks the credential format for id before any network call.
func ValidateCredential(id Kind, credential string) error {
	re, ok := credentialShapes[id]
	if !ok {
		return &UnknownProviderError{Name: string(id)}
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return fmt.Errorf("%w: %s api key is empty", ErrInvalidCredential, id)
	}
	if !re.MatchString(credential) {
		return fmt.Errorf("%w for %s", ErrInvalidCredential, id)
	}
	return nil
}
