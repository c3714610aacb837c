package language

import "strings"

// Default is the recognition language used when none is configured.
const Default = "chi_sim"

type entry struct {
	tesseract string   // traineddata name
	display   string   // Human-readable name
	aliases   []string // ISO codes, regional tags and word forms
}

var languages = []entry{
	{"chi_sim", "Chinese (Simplified)", []string{"ch", "zh", "zh-cn", "zh-hans", "chs", "zho", "chi", "chinese", "chi_sim"}},
	{"chi_tra", "Chinese (Traditional)", []string{"cht", "zh-tw", "zh-hk", "zh-hant", "chinese_cht", "chi_tra"}},
	{"eng", "English", []string{"en", "eng", "english"}},
	{"jpn", "Japanese", []string{"ja", "jp", "jpn", "japan", "japanese"}},
	{"kor", "Korean", []string{"ko", "kr", "kor", "korean"}},
	{"fra", "French", []string{"fr", "fra", "fre", "french"}},
	{"deu", "German", []string{"de", "deu", "ger", "german"}},
	{"spa", "Spanish", []string{"es", "spa", "spanish"}},
	{"rus", "Russian", []string{"ru", "rus", "russian"}},
	{"vie", "Vietnamese", []string{"vi", "vie", "vietnamese"}},
	{"tha", "Thai", []string{"th", "tha", "thai"}},
}

var byAlias map[string]*entry

func init() {
	byAlias = make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		for _, alias := range e.aliases {
			byAlias[alias] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, "_", "-")
	if e, ok := byAlias[code]; ok {
		return e
	}
	// traineddata names keep their underscore
	if e, ok := byAlias[strings.ReplaceAll(code, "-", "_")]; ok {
		return e
	}
	return nil
}

// Tesseract converts a language or "+"-joined list of languages to
// tesseract traineddata names. Unknown names pass through lowercased so
// custom models still work; empty input selects Default. Duplicates are
// dropped.
func Tesseract(code string) string {
	parts := split(code)
	if len(parts) == 0 {
		return Default
	}
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		name := part
		if e := lookup(part); e != nil {
			name = e.tesseract
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return strings.Join(out, "+")
}

// DisplayName returns a human-readable name for a language or list of
// languages. Empty input names Default; unknown codes are uppercased.
func DisplayName(code string) string {
	parts := split(code)
	if len(parts) == 0 {
		parts = []string{Default}
	}
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if e := lookup(part); e != nil {
			names = append(names, e.display)
			continue
		}
		names = append(names, strings.ToUpper(part))
	}
	return strings.Join(names, " + ")
}

func split(code string) []string {
	var parts []string
	for _, part := range strings.Split(code, "+") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
