package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/activitychart/internal/models"
	"github.com/claude/activitychart/internal/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

var resSources = mcp.NewResource(
	"activitychart://sources",
	"Activity Sources",
	mcp.WithResourceDescription("Supported providers with the tables their samples are read from"),
	mcp.WithMIMEType("application/json"),
)

type sourceInfo struct {
	Source       models.Source `json:"activity_source"`
	DetailTable  string        `json:"detail_table,omitempty"`
	SummaryTable string        `json:"summary_table"`
}

func (h *handlers) sources(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out := make([]sourceInfo, 0, len(models.AllSources))
	for _, s := range models.AllSources {
		t, err := schema.For(s)
		if err != nil {
			return nil, err
		}
		out = append(out, sourceInfo{Source: s, DetailTable: t.Detail, SummaryTable: t.Summary})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
