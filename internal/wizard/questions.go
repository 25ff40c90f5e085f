// Package wizard contém o funil de registro: o questionário, a validação por
// campo, a máscara de WhatsApp e a máquina de passos. Nada aqui faz IO.
package wizard

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/xavierca1/dsx-leads/internal/entity"
)

type Field string

const (
	FieldName     Field = "nome"
	FieldEmail    Field = "email"
	FieldWhatsApp Field = "whatsapp"
	FieldProfile  Field = "perfil"
	FieldCompany  Field = "empresa"
	FieldRevenue  Field = "faturamento"
)

// Fields na ordem dos passos.
var Fields = []Field{FieldName, FieldEmail, FieldWhatsApp, FieldProfile, FieldCompany, FieldRevenue}

const (
	StepWhatsApp = 2
	StepProfile  = 3
	StepCompany  = 4
	LastStep     = 5
)

type Question struct {
	Key         Field    `yaml:"key" json:"key"`
	Label       string   `yaml:"label" json:"label"`
	Placeholder string   `yaml:"placeholder" json:"placeholder"`
	Type        string   `yaml:"type" json:"type"`
	Options     []string `yaml:"options,omitempty" json:"options,omitempty"`
}

func (q Question) IsRadio() bool {
	return q.Type == "radio"
}

//go:embed questions.yaml
var questionsYAML []byte

var questions = mustLoadQuestions(questionsYAML)

// Questions devolve uma cópia do questionário.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

func QuestionAt(step int) (Question, bool) {
	if step < 0 || step >= len(questions) {
		return Question{}, false
	}
	return questions[step], true
}

func mustLoadQuestions(raw []byte) []Question {
	qs, err := LoadQuestions(raw)
	if err != nil {
		panic(err)
	}
	return qs
}

// LoadQuestions lê um questionário e confere com a ordem dos passos e com as
// opções do lead.
func LoadQuestions(raw []byte) ([]Question, error) {
	var qs []Question
	if err := yaml.Unmarshal(raw, &qs); err != nil {
		return nil, fmt.Errorf("erro ao ler questionário: %w", err)
	}

	if len(qs) != len(Fields) {
		return nil, fmt.Errorf("questionário com %d perguntas, esperado %d", len(qs), len(Fields))
	}

	for i, q := range qs {
		if q.Key != Fields[i] {
			return nil, fmt.Errorf("pergunta %d: chave %q, esperado %q", i, q.Key, Fields[i])
		}
		for _, opt := range q.Options {
			if !knownOption(q.Key, opt) {
				return nil, fmt.Errorf("pergunta %q: opção desconhecida %q", q.Key, opt)
			}
		}
		if q.IsRadio() && len(q.Options) == 0 {
			return nil, fmt.Errorf("pergunta %q sem opções", q.Key)
		}
	}

	return qs, nil
}

func knownOption(f Field, opt string) bool {
	switch f {
	case FieldProfile:
		_, ok := entity.ParseProfileCategory(opt)
		return ok
	case FieldRevenue:
		_, ok := entity.ParseRevenueBracket(opt)
		return ok
	default:
		return false
	}
}
