package parser

import (
	"strings"
)

/*
Responsibilities

- Turn the text of one brand document into ordered model records
- Attach each model to the most recent section heading
- Skip anything it does not recognise

Parsing never fails. Malformed lines are ignored and a document without any
model headings yields an empty result.
*/

// Parse converts document text into model records in source order.
func Parse(text string) []ModelRecord {
	p := docParser{records: []ModelRecord{}}
	for _, raw := range strings.Split(text, "\n") {
		p.consume(ClassifyLine(strings.TrimRight(raw, "\r")))
	}
	p.flush()
	return p.records
}

type docParser struct {
	state   state
	series  *string
	current *ModelRecord
	records []ModelRecord
}

func (p *docParser) consume(line Line) {
	switch line.Kind {
	case LineSection:
		p.flush()
		series := line.Series
		p.series = &series
		p.state = stateDefault
	case LineModel:
		p.flush()
		p.current = &ModelRecord{
			MainModelName: line.MainModelName,
			Codename:      line.Codename,
			Series:        copyPtr(p.series),
			Variants:      []ModelVariant{},
		}
		p.state = stateInModel
	case LineVariant:
		if p.state != stateInModel {
			return
		}
		p.current.Variants = append(p.current.Variants, ModelVariant{
			ModelNumber: line.ModelNumber,
			VariantName: line.VariantName,
		})
	}
}

// flush emits the open model if it collected any variants.
func (p *docParser) flush() {
	if p.current != nil && len(p.current.Variants) > 0 {
		p.records = append(p.records, *p.current)
	}
	p.current = nil
	p.state = stateDefault
}

func copyPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
