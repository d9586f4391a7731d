// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/brewwater/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the brewwater MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Brewwater Dosing Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: calculate_recipe ---
	s.AddTool(mcp.NewTool("calculate_recipe",
		mcp.WithDescription("Convert target GH/KH hardness into drop counts for the Mg, Ca, KHCO3 and NaHCO3 concentrates."),
		mcp.WithString("preset", mcp.Description("Preset key or name to start from (e.g. 'bright-juicy'). Explicit numbers override it.")),
		mcp.WithNumber("gh", mcp.Description("General hardness in ppm.")),
		mcp.WithNumber("kh", mcp.Description("Carbonate hardness in ppm.")),
		mcp.WithNumber("mg_share", mcp.Description("Percent of GH from magnesium (0-100).")),
		mcp.WithNumber("k_share", mcp.Description("Percent of KH from potassium bicarbonate (0-100).")),
		mcp.WithNumber("volume", mcp.Description("Water volume in mL.")),
		mcp.WithString("profile", mcp.Description("Concentrate profile. Defaults to 'standard'."), mcp.Enum(profileNames(baseCfg)...)),
		mcp.WithString("rounding", mcp.Description("Rounding strategy. Defaults to 'independent'."), mcp.Enum("independent", "balanced")),
		mcp.WithBoolean("record", mcp.Description("Record the recipe in history when a backend is configured. Defaults to true.")),
	), h.handleCalculateRecipe)

	// --- 2. Tool: list_presets ---
	s.AddTool(mcp.NewTool("list_presets",
		mcp.WithDescription("List the preset catalog with the drop counts each preset yields."),
		mcp.WithNumber("volume", mcp.Description("Water volume in mL used for the drop counts.")),
		mcp.WithString("profile", mcp.Description("Concentrate profile."), mcp.Enum(profileNames(baseCfg)...)),
		mcp.WithString("rounding", mcp.Description("Rounding strategy."), mcp.Enum("independent", "balanced")),
	), h.handleListPresets)

	// --- 3. Tool: list_profiles ---
	s.AddTool(mcp.NewTool("list_profiles",
		mcp.WithDescription("List the concentrate profiles with their potency per drop."),
	), h.handleListProfiles)

	return s
}

// StartMCPServer starts the brewwater MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}

func profileNames(cfg *contract.Config) []string {
	names := make([]string, 0, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		names = append(names, p.Name)
	}
	return names
}
