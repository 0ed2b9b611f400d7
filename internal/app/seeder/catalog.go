package seeder

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// CatalogFile is the on-disk shape of a topic catalog.
//
//	subjects:
//	  - name: Polity
//	    exam_modes: [prelims, mains]
//	    chapters:
//	      - name: Constitution
//	        topics:
//	          - name: Fundamental Rights
//	            pyq_weight: 5
//	            importance: 5
//	            difficulty: 3
//	            estimated_hours: 4
//	            estimated_micro_minutes: 30
type CatalogFile struct {
	Subjects []SubjectDoc `yaml:"subjects"`
}

type SubjectDoc struct {
	Name      string       `yaml:"name"`
	ExamModes []string     `yaml:"exam_modes"`
	Chapters  []ChapterDoc `yaml:"chapters"`
}

type ChapterDoc struct {
	Name   string     `yaml:"name"`
	Topics []TopicDoc `yaml:"topics"`
}

type TopicDoc struct {
	Name                  string  `yaml:"name"`
	PYQWeight             int     `yaml:"pyq_weight"`
	Importance            int     `yaml:"importance"`
	Difficulty            int     `yaml:"difficulty"`
	EstimatedHours        float64 `yaml:"estimated_hours"`
	EstimatedMicroMinutes int     `yaml:"estimated_micro_minutes"`
}

// ReadCatalogFile opens and decodes the catalog at path.
func ReadCatalogFile(path string) (*CatalogFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return DecodeCatalog(f)
}

// DecodeCatalog parses and validates a YAML catalog. Unknown keys are rejected.
func DecodeCatalog(r io.Reader) (*CatalogFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cf CatalogFile
	if err := dec.Decode(&cf); err != nil {
		if err == io.EOF {
			return &cf, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Validate checks names, exam modes and the 1..5 weight scales.
func (cf *CatalogFile) Validate() error {
	var errs []domain.FieldError

	subjects := make(map[string]bool, len(cf.Subjects))
	for i, s := range cf.Subjects {
		path := fmt.Sprintf("subjects[%d]", i)
		if s.Name == "" {
			errs = append(errs, domain.FieldError{Field: path + ".name", Message: "required"})
		} else if subjects[s.Name] {
			errs = append(errs, domain.FieldError{Field: path + ".name", Message: "duplicate subject " + s.Name})
		}
		subjects[s.Name] = true

		for _, m := range s.ExamModes {
			if !domain.ExamMode(m).IsValid() {
				errs = append(errs, domain.FieldError{Field: path + ".exam_modes", Message: "unknown exam mode " + m})
			}
		}

		for j, ch := range s.Chapters {
			chPath := fmt.Sprintf("%s.chapters[%d]", path, j)
			if ch.Name == "" {
				errs = append(errs, domain.FieldError{Field: chPath + ".name", Message: "required"})
			}
			for k, t := range ch.Topics {
				errs = append(errs, validateTopic(fmt.Sprintf("%s.topics[%d]", chPath, k), t)...)
			}
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func validateTopic(path string, t TopicDoc) []domain.FieldError {
	var errs []domain.FieldError
	if t.Name == "" {
		errs = append(errs, domain.FieldError{Field: path + ".name", Message: "required"})
	}
	scales := []struct {
		field string
		value int
	}{
		{"pyq_weight", t.PYQWeight},
		{"importance", t.Importance},
		{"difficulty", t.Difficulty},
	}
	for _, sc := range scales {
		if sc.value < 1 || sc.value > 5 {
			errs = append(errs, domain.FieldError{Field: path + "." + sc.field, Message: "must be between 1 and 5"})
		}
	}
	if t.EstimatedHours <= 0 {
		errs = append(errs, domain.FieldError{Field: path + ".estimated_hours", Message: "must be positive"})
	}
	if t.EstimatedMicroMinutes < 0 {
		errs = append(errs, domain.FieldError{Field: path + ".estimated_micro_minutes", Message: "must not be negative"})
	}
	return errs
}

// TopicCount returns the number of topics across all subjects.
func (cf *CatalogFile) TopicCount() int {
	n := 0
	for _, s := range cf.Subjects {
		for _, ch := range s.Chapters {
			n += len(ch.Topics)
		}
	}
	return n
}
