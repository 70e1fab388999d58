package normalize

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary holds the code tables used to translate categorical columns.
// Keys are upper case.
type Vocabulary struct {
	Marital map[string]string `yaml:"marital"`
	Gender  map[string]string `yaml:"gender"`
	Race    map[string]string `yaml:"race"`
}

// DefaultVocabulary returns a fresh copy of the built-in code tables.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Marital: map[string]string{
			"S":        "Solteiro",
			"M":        "Casado",
			"D":        "Divorciado",
			"W":        "Viúvo",
			"SINGLE":   "Solteiro",
			"MARRIED":  "Casado",
			"DIVORCED": "Divorciado",
			"WIDOWED":  "Viúvo",
		},
		Gender: map[string]string{
			"M":      "Masculino",
			"F":      "Feminino",
			"MALE":   "Masculino",
			"FEMALE": "Feminino",
		},
		Race: map[string]string{
			"WHITE":    "Branco",
			"BLACK":    "Preto",
			"HISPANIC": "Pardo",
			"ASIAN":    "Amarelo",
			"NATIVE":   "Indígena",
			"OTHER":    "Outro",
		},
	}
}

// LoadVocabulary reads a YAML file of extra codes and merges it over the
// default tables. An empty path returns the defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := DefaultVocabulary()
	if path == "" {
		return v, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("read vocabulary: %w", err)
	}
	var extra Vocabulary
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return v, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}

	merge(v.Marital, extra.Marital)
	merge(v.Gender, extra.Gender)
	merge(v.Race, extra.Race)
	return v, nil
}

func merge(dst, src map[string]string) {
	for k, val := range src {
		dst[strings.ToUpper(strings.TrimSpace(k))] = val
	}
}

// Translate looks code up case-insensitively. Unknown codes come back
// trimmed but otherwise unchanged.
func Translate(code *string, table map[string]string) *string {
	if code == nil {
		return nil
	}
	s := CleanString(*code)
	if s == nil {
		return nil
	}
	if label, ok := table[strings.ToUpper(*s)]; ok {
		return &label
	}
	return s
}

// FullName joins the present name parts with single spaces in the order
// prefix, first, middle, last, suffix.
func FullName(prefix, first, middle, last, suffix *string) *string {
	var parts []string
	for _, p := range []*string{prefix, first, middle, last, suffix} {
		if p == nil {
			continue
		}
		if s := CleanString(*p); s != nil {
			parts = append(parts, *s)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	name := strings.Join(parts, " ")
	return &name
}
