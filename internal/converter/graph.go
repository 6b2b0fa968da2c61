package converter

import (
	"strconv"
	"strings"

	"github.com/hamba/avro/v2"

	"github.com/tordrt/spanneravro/internal/ddl"
)

// keyColumnSeparator joins key column lists into one annotation value.
const keyColumnSeparator = ", "

// convertPropertyGraph flattens the graph into path-indexed annotations, for
// example spannerGraphNodeTable_0_LABEL_1_PROPERTY_0_NAME.
func (c *Converter) convertPropertyGraph(g ddl.PropertyGraph) (*avro.RecordSchema, error) {
	p := c.schemaProps(g.Name)
	p.set(SpannerEntity, EntityPropertyGraph)

	for i, nt := range g.NodeTables {
		elementTableProps(p, path(NodeTable, i), nt)
	}
	for i, et := range g.EdgeTables {
		prefix := path(EdgeTable, i)
		elementTableProps(p, prefix, et)
		nodeReferenceProps(p, prefix+"_SOURCE", et.SourceNodeTable)
		nodeReferenceProps(p, prefix+"_TARGET", et.TargetNodeTable)
	}

	for i, l := range g.Labels {
		prefix := path(GraphLabel, i)
		p.set(prefix+"_NAME", l.Name)
		for j, prop := range l.Properties {
			p.set(path(prefix+"_PROPERTY", j), prop)
		}
	}
	for i, decl := range g.PropertyDeclarations {
		prefix := path(GraphPropertyDcl, i)
		p.set(prefix+"_NAME", decl.Name)
		p.set(prefix+"_TYPE", decl.Type)
	}

	return c.record(g.Name, nil, p)
}

func elementTableProps(p props, prefix string, t ddl.GraphElementTable) {
	p.set(prefix+"_NAME", t.Name)
	p.set(prefix+"_BASE_TABLE_NAME", t.BaseTableName)
	p.set(prefix+"_KIND", string(t.Kind))
	p.set(prefix+"_KEY_COLUMNS", strings.Join(t.KeyColumns, keyColumnSeparator))

	for i, l := range t.LabelToPropertyDefinitions {
		labelPrefix := path(prefix+"_LABEL", i)
		p.set(labelPrefix+"_NAME", l.LabelName)
		for j, def := range l.PropertyDefinitions {
			propPrefix := path(labelPrefix+"_PROPERTY", j)
			p.set(propPrefix+"_NAME", def.Name)
			p.set(propPrefix+"_VALUE", def.ValueExpression)
		}
	}
}

func nodeReferenceProps(p props, prefix string, ref ddl.GraphNodeTableReference) {
	p.set(prefix+"_NODE_TABLE_NAME", ref.NodeTableName)
	p.set(prefix+"_NODE_KEY_COLUMNS", strings.Join(ref.NodeKeyColumns, keyColumnSeparator))
	p.set(prefix+"_EDGE_KEY_COLUMNS", strings.Join(ref.EdgeKeyColumns, keyColumnSeparator))
}

func path(prefix string, index int) string {
	return prefix + "_" + strconv.Itoa(index)
}
