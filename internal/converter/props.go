package converter

import "strconv"

// Annotation keys attached to the generated schemas and fields. Keys ending in
// an underscore start a numbered family: the zero-based position is appended.
const (
	GoogleFormatVersion = "googleFormatVersion"
	GoogleStorage       = "googleStorage"
	StorageCloudSpanner = "CloudSpanner"
	SpannerName         = "spannerName"
	SpannerEntity       = "spannerEntity"

	SQLType              = "sqlType"
	NotNull              = "notNull"
	GenerationExpression = "generationExpression"
	Stored               = "stored"
	DefaultExpression    = "defaultExpression"
	Hidden               = "hidden"
	IdentityColumn       = "identityColumn"
	SequenceKind         = "sequenceKind"
	CounterStartValue    = "counterStartValue"
	SkipRangeMin         = "skipRangeMin"
	SkipRangeMax         = "skipRangeMax"
	PlacementKey         = "spannerPlacementKey"

	PrimaryKey       = "spannerPrimaryKey_"
	Parent           = "spannerParent"
	OnDeleteAction   = "spannerOnDeleteAction"
	InterleaveType   = "spannerInterleaveType"
	Index            = "spannerIndex_"
	ForeignKey       = "spannerForeignKey_"
	CheckConstraint  = "spannerCheckConstraint_"
	Option           = "spannerOption_"
	SequenceOption   = "sequenceOption_"
	ViewQuery        = "spannerViewQuery"
	ViewSecurity     = "spannerViewSecurity"
	ChangeStreamFor  = "spannerChangeStreamForClause"
	UdfName          = "spannerUdfName"
	UdfDefinition    = "spannerUdfDefinition"
	UdfType          = "spannerUdfType"
	UdfSecurity      = "spannerUdfSecurity"
	UdfParameter     = "spannerUdfParameter_"
	Remote           = "spannerRemote"
	NodeTable        = "spannerGraphNodeTable"
	EdgeTable        = "spannerGraphEdgeTable"
	GraphLabel       = "spannerGraphLabel"
	GraphPropertyDcl = "spannerGraphPropertyDeclaration"
)

// Values of SpannerEntity and the on-delete annotation.
const (
	EntityPlacement     = "Placement"
	EntityPropertyGraph = "PropertyGraph"
	EntityModel         = "Model"

	OnDeleteCascade  = "cascade"
	OnDeleteNoAction = "no action"
)

// Field names of a model schema.
const (
	ModelInput  = "Input"
	ModelOutput = "Output"
)

// props is the annotation set of one schema or field.
type props map[string]any

func (p props) set(key, value string) {
	p[key] = value
}

// setFamily writes values under prefix0, prefix1, ... in order.
func (p props) setFamily(prefix string, values []string) {
	for i, v := range values {
		p[prefix+strconv.Itoa(i)] = v
	}
}

func (p props) setBool(key string, value bool) {
	p[key] = strconv.FormatBool(value)
}

func (p props) setInt(key string, value *int64) {
	if value != nil {
		p[key] = strconv.FormatInt(*value, 10)
	}
}

// setIfPresent skips empty values.
func (p props) setIfPresent(key, value string) {
	if value != "" {
		p[key] = value
	}
}
