package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for listing documents.
//
// Names and transcript texts use English stemming so "complaints" finds
// "complaint". Speakers, tags and source are keywords for exact filtering.
// Timestamps are numeric for recency sorting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	text := func(store bool) *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = en.AnalyzerName
		fm.Store = store
		fm.IncludeTermVectors = store // highlighting needs both
		return fm
	}
	kw := func() *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = true
		return fm
	}
	num := func() *mapping.FieldMapping {
		fm := bleve.NewNumericFieldMapping()
		fm.Store = true
		return fm
	}

	docMapping.AddFieldMappingsAt("name", text(true))
	docMapping.AddFieldMappingsAt("original_text", text(true))
	docMapping.AddFieldMappingsAt("generated_text", text(true))

	docMapping.AddFieldMappingsAt("id", kw())
	docMapping.AddFieldMappingsAt("source", kw())
	docMapping.AddFieldMappingsAt("speakers", kw())
	docMapping.AddFieldMappingsAt("tags", kw())

	docMapping.AddFieldMappingsAt("segment_count", num())
	docMapping.AddFieldMappingsAt("created_at", num())
	docMapping.AddFieldMappingsAt("updated_at", num())

	indexMapping.DefaultMapping = docMapping

	return indexMapping
}
