package domain

import (
	"fmt"
	"strings"
)

// MaxNameLength bounds network and host names.
const MaxNameLength = 100

// NameError describes a name that breaks one of the naming rules. It
// wraps ErrValidation.
type NameError struct {
	Kind    string // "network" or "host"
	Name    string
	Message string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("%s: %s name %q: %s", ErrValidation, e.Kind, e.Name, e.Message)
}

func (e *NameError) Unwrap() error { return ErrValidation }

// ValidateNetworkName checks the format rules for a network name.
// Uniqueness is checked by the graph.
func ValidateNetworkName(name string) error {
	return validateName("network", "Network names", name)
}

// ValidateHostName applies the network name rules to host names.
func ValidateHostName(name string) error {
	return validateName("host", "Hostnames", name)
}

func validateName(kind, label, name string) error {
	fail := func(msg string) error {
		return &NameError{Kind: kind, Name: name, Message: msg}
	}

	if name == "" {
		return fail(label + " cannot be empty.")
	}
	if len(name) > MaxNameLength {
		return fail(fmt.Sprintf("%s cannot exceed %d characters.", label, MaxNameLength))
	}
	for _, r := range name {
		if !isNameRune(r) {
			return fail(label + " must only contain alphanumeric characters and dashes.")
		}
	}
	first := name[0]
	if first == '-' || (first >= '0' && first <= '9') || strings.HasSuffix(name, "-") {
		return fail(label + " must start with a letter and end with a letter or digit.")
	}
	return nil
}

func isNameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-'
}
