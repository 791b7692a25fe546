package schema

// Decode builds a record from loosely typed values, usually decoded JSON.
// Unknown names are ignored, values that do not fit their definition keep
// the default.
func Decode(s *Schema, values map[string]any) Record {
	r := s.Defaults()
	for _, d := range s.definitions {
		raw, ok := values[d.Name]
		if !ok || raw == nil {
			continue
		}
		if value, ok := coerce(d.Type, raw); ok {
			r[d.Name] = value
		}
	}
	return r
}

// Encode returns the values of r that belong to definitions selected by keep,
// in a shape that survives a JSON round trip through Decode. A nil keep
// selects every definition.
func Encode(s *Schema, r Record, keep func(Definition) bool) map[string]any {
	values := map[string]any{}
	for _, d := range s.definitions {
		if keep != nil && !keep(d) {
			continue
		}
		if value, ok := r[d.Name]; ok {
			values[d.Name] = value
		}
	}
	return values
}

// Unsourced selects definitions that are persisted out of band
func Unsourced(d Definition) bool {
	return d.Source == nil
}
