package converter

import "github.com/hamba/avro/v2"

// Entity kinds without a spannerEntity annotation of their own.
const (
	KindTable        = "Table"
	KindView         = "View"
	KindFunction     = "Function"
	KindSequence     = "Sequence"
	KindChangeStream = "ChangeStream"

	// KindUnknown is reported for schemas whose annotations name no entity.
	KindUnknown = "Unknown"
)

// Kind tells which Spanner entity a generated schema describes, reading the
// same annotations an importer relies on. A table needs Cloud Spanner storage
// plus columns, primary key parts or an interleaving parent.
func Kind(s *avro.RecordSchema) string {
	if e, ok := s.Prop(SpannerEntity).(string); ok && e != "" {
		return e
	}
	switch {
	case s.Prop(ViewQuery) != nil:
		return KindView
	case s.Prop(ChangeStreamFor) != nil:
		return KindChangeStream
	case s.Prop(UdfDefinition) != nil, s.Prop(UdfName) != nil, s.Prop(UdfType) != nil:
		return KindFunction
	case s.Prop(SequenceOption+"0") != nil, s.Prop(SequenceKind) != nil:
		return KindSequence
	case isTable(s):
		return KindTable
	default:
		return KindUnknown
	}
}

func isTable(s *avro.RecordSchema) bool {
	if s.Prop(GoogleStorage) != StorageCloudSpanner {
		return false
	}
	return len(s.Fields()) > 0 || s.Prop(PrimaryKey+"0") != nil || s.Prop(Parent) != nil
}
