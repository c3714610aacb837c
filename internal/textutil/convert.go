package textutil

import (
	"fmt"
	"strings"

	"github.com/longbridgeapp/opencc"
)

// Converter rewrites text between script variants.
type Converter interface {
	Convert(string) string
}

type identityConverter struct{}

func (identityConverter) Convert(s string) string { return s }

// Identity returns a converter that leaves text untouched.
func Identity() Converter { return identityConverter{} }

type openccConverter struct {
	cc *opencc.OpenCC
}

// Convert falls back to the input when OpenCC cannot process it; a failed
// conversion should never drop a subtitle line.
func (c openccConverter) Convert(s string) string {
	if s == "" {
		return s
	}
	out, err := c.cc.Convert(s)
	if err != nil {
		return s
	}
	return out
}

// NewConverter builds a converter for an OpenCC profile such as "s2t",
// "t2s", or "s2tw". An empty profile or "none" yields the identity converter.
func NewConverter(profile string) (Converter, error) {
	profile = strings.ToLower(strings.TrimSpace(profile))
	if profile == "" || profile == "none" {
		return Identity(), nil
	}
	cc, err := opencc.New(profile)
	if err != nil {
		return nil, fmt.Errorf("load opencc profile %q: %w", profile, err)
	}
	return openccConverter{cc: cc}, nil
}

// Normalizer turns raw recognizer output into display text.
type Normalizer struct {
	Converter Converter
}

// NewNormalizer wraps conv; a nil converter means no script conversion.
func NewNormalizer(conv Converter) Normalizer {
	if conv == nil {
		conv = Identity()
	}
	return Normalizer{Converter: conv}
}

// Normalize cleans s and then applies script conversion.
func (n Normalizer) Normalize(s string) string {
	cleaned := Clean(s)
	if n.Converter == nil || cleaned == "" {
		return cleaned
	}
	return n.Converter.Convert(cleaned)
}
