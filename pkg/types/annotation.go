// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the gene-annotator engine:
// identifiers, per-provider results, merged annotation records and the
// result set returned to callers.
package types

import (
	"strings"
	"time"
)

// Field names used in ProviderResult.Fields, fallback tables and provenance.
const (
	FieldDescription      = "description"
	FieldPathways         = "pathways"
	FieldHallmarkPathways = "hallmark_pathways"
	FieldDrugTargets      = "drug_targets"
	FieldDruggability     = "druggability"
	FieldMutationInfo     = "mutation_info"
	FieldExternalLinks    = "external_links"
)

// AllFields lists every annotation field in display order.
var AllFields = []string{
	FieldDescription,
	FieldPathways,
	FieldHallmarkPathways,
	FieldDrugTargets,
	FieldDruggability,
	FieldMutationInfo,
	FieldExternalLinks,
}

// Provenance sources that are not provider names.
const (
	SourceFallback    = "fallback"
	SourceNone        = "none"
	SourceUnavailable = "unavailable"
	SourceLinks       = "links"
)

// Identifier is a normalized gene symbol.
type Identifier struct {
	// Symbol is the trimmed, upper-cased token used for provider queries
	// and uniqueness.
	Symbol string `json:"symbol" yaml:"symbol"`

	// Display is the trimmed token as the caller first supplied it.
	Display string `json:"display" yaml:"display"`
}

// StatusCode classifies the outcome of one provider fetch.
type StatusCode string

const (
	StatusOK       StatusCode = "ok"
	StatusNotFound StatusCode = "not_found"
	StatusError    StatusCode = "error"
)

// Status is the outcome of a fetch. Category and Reason are set only for
// StatusError.
type Status struct {
	Code     StatusCode `json:"code" yaml:"code"`
	Category string     `json:"category,omitempty" yaml:"category,omitempty"`
	Reason   string     `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// OK reports whether the fetch succeeded with data.
func (s Status) OK() bool { return s.Code == StatusOK }

// ProviderResult holds what one provider returned for one identifier.
// Fields maps a field name to its values; scalar fields carry one element.
type ProviderResult struct {
	Identifier string              `json:"identifier" yaml:"identifier"`
	Provider   string              `json:"provider" yaml:"provider"`
	Fields     map[string][]string `json:"fields,omitempty" yaml:"fields,omitempty"`
	FetchedAt  time.Time           `json:"fetched_at" yaml:"fetched_at"`
	Status     Status              `json:"status" yaml:"status"`
}

// Link is a labelled external reference for a gene.
type Link struct {
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

// AnnotationRecord is the merged annotation for one identifier.
type AnnotationRecord struct {
	// Identifier is the display form of the gene symbol.
	Identifier string `json:"identifier" yaml:"identifier"`

	// Symbol is the upper-cased query form.
	Symbol string `json:"symbol" yaml:"symbol"`

	Description      string   `json:"description" yaml:"description"`
	Pathways         []string `json:"pathways" yaml:"pathways"`
	HallmarkPathways []string `json:"hallmark_pathways" yaml:"hallmark_pathways"`

	// DrugTargets is deduplicated case-insensitively and sorted.
	DrugTargets  []string `json:"drug_targets" yaml:"drug_targets"`
	Druggability []string `json:"druggability" yaml:"druggability"`
	MutationInfo string   `json:"mutation_info" yaml:"mutation_info"`

	ExternalLinks []Link `json:"external_links" yaml:"external_links"`

	// Provenance maps every field name to the source that supplied it: a
	// provider name, "fallback", "links", "none" or "unavailable".
	Provenance map[string]string `json:"provenance" yaml:"provenance"`

	// Diagnostics maps a provider name to its error reason, when it failed.
	Diagnostics map[string]string `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// HasDrugTargets reports whether any drug target was found.
func (r AnnotationRecord) HasDrugTargets() bool { return len(r.DrugTargets) > 0 }

// ResultSet is the ordered output of one aggregation call.
type ResultSet struct {
	// Providers lists the providers consulted, in merge priority order.
	Providers []string `json:"providers" yaml:"providers"`

	// Records holds one record per unique input identifier, in input order.
	Records []AnnotationRecord `json:"records" yaml:"records"`
}

// Find returns the record whose symbol matches symbol case-insensitively.
func (rs ResultSet) Find(symbol string) (AnnotationRecord, bool) {
	for _, r := range rs.Records {
		if strings.EqualFold(r.Symbol, symbol) {
			return r, true
		}
	}
	return AnnotationRecord{}, false
}
