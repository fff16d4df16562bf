package markdowntemplate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwery-sql/qwery/markdowntemplate"
)

const sample = `---
owner: "tickers"
---

# Tech Tickers

## Description

Lists every ticker in the Tech sector.

## Sql

` + "```sql" + `
SELECT Symbol, LastSale
FROM './tickers.csv'
WHERE Sector = 'Tech'
` + "```" + `

## Count

` + "```sql" + `
SELECT COUNT(*) FROM './tickers.csv' WHERE Sector = 'Tech'
` + "```" + `
`

func TestParseExtractsFrontMatterAndTitle(t *testing.T) {
	doc, err := markdowntemplate.Parse(sample)
	require.NoError(t, err)

	assert.Equal(t, "Tech Tickers", doc.Title)
	assert.Equal(t, "tickers", doc.Metadata["owner"])
}

func TestParseExtractsNamedSQLSections(t *testing.T) {
	doc, err := markdowntemplate.Parse(sample)
	require.NoError(t, err)

	sql, err := doc.Template("sql")
	require.NoError(t, err)
	assert.Contains(t, sql, "SELECT Symbol, LastSale")

	count, err := doc.Template("count")
	require.NoError(t, err)
	assert.Contains(t, count, "COUNT(*)")
}

func TestTemplateRejectsUnknownName(t *testing.T) {
	doc, err := markdowntemplate.Parse(sample)
	require.NoError(t, err)

	_, err = doc.Template("missing")
	assert.ErrorIs(t, err, markdowntemplate.ErrUnknownTemplate)
}

func TestParseWithoutFrontMatterStillWorks(t *testing.T) {
	doc, err := markdowntemplate.Parse("# Simple\n\n## Sql\n\n```sql\nSELECT 1\n```\n")
	require.NoError(t, err)

	assert.Empty(t, doc.Metadata)

	sql, err := doc.Template("")
	require.NoError(t, err)
	assert.Contains(t, sql, "SELECT 1")
}

func TestParseWithoutSQLSectionFails(t *testing.T) {
	_, err := markdowntemplate.Parse("# Simple\n\n## Description\n\nNo SQL here.\n")
	assert.ErrorIs(t, err, markdowntemplate.ErrNoTemplates)
}
