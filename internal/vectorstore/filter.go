package vectorstore

import "github.com/qdrant/go-client/qdrant"

// Condition is one payload predicate: exact match, any-of, or numeric range.
// Exactly one of Match, AnyOf, or the range bounds should be set.
type Condition struct {
	Field string
	Match any
	AnyOf []string
	Gte   *float64
	Lte   *float64
}

// Filter groups conditions into the boolean structure the store understands.
type Filter struct {
	Must    []Condition
	Should  []Condition
	MustNot []Condition
}

// IsEmpty reports whether the filter carries no conditions.
func (f *Filter) IsEmpty() bool {
	return f == nil || (len(f.Must) == 0 && len(f.Should) == 0 && len(f.MustNot) == 0)
}

// Eq builds an exact-match condition. Strings match keyword fields, integers
// match integer fields.
func Eq(field string, value any) Condition {
	return Condition{Field: field, Match: value}
}

// AnyOf builds an any-of-keywords condition.
func AnyOf(field string, values ...string) Condition {
	return Condition{Field: field, AnyOf: values}
}

// Gte builds a numeric lower-bound condition.
func Gte(field string, value float64) Condition {
	return Condition{Field: field, Gte: &value}
}

func (f *Filter) toQdrant() *qdrant.Filter {
	if f.IsEmpty() {
		return nil
	}
	return &qdrant.Filter{
		Must:    conditionsToQdrant(f.Must),
		Should:  conditionsToQdrant(f.Should),
		MustNot: conditionsToQdrant(f.MustNot),
	}
}

func conditionsToQdrant(conds []Condition) []*qdrant.Condition {
	if len(conds) == 0 {
		return nil
	}
	out := make([]*qdrant.Condition, 0, len(conds))
	for _, c := range conds {
		if qc := c.toQdrant(); qc != nil {
			out = append(out, qc)
		}
	}
	return out
}

func (c Condition) toQdrant() *qdrant.Condition {
	switch {
	case len(c.AnyOf) > 0:
		return qdrant.NewMatchKeywords(c.Field, c.AnyOf...)
	case c.Gte != nil || c.Lte != nil:
		return qdrant.NewRange(c.Field, &qdrant.Range{Gte: c.Gte, Lte: c.Lte})
	case c.Match != nil:
		switch v := c.Match.(type) {
		case string:
			return qdrant.NewMatch(c.Field, v)
		case int:
			return qdrant.NewMatchInt(c.Field, int64(v))
		case int64:
			return qdrant.NewMatchInt(c.Field, v)
		case bool:
			return qdrant.NewMatchBool(c.Field, v)
		}
	}
	return nil
}
