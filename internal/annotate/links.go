// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"net/url"

	"github.com/pdiddy/gene-annotator/pkg/types"
)

// Links returns the external reference pages for a gene symbol.
func Links(symbol string) []types.Link {
	q := url.QueryEscape(symbol)
	return []types.Link{
		{Label: "GeneCards", URL: "https://www.genecards.org/cgi-bin/carddisp.pl?gene=" + q},
		{Label: "NCBI", URL: "https://www.ncbi.nlm.nih.gov/gene/?term=" + q},
	}
}
