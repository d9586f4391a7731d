package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/brewwater/core"
	"github.com/huangsam/brewwater/internal/contract"
	"github.com/huangsam/brewwater/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HistoryManager
}

func (h *toolHandler) handleCalculateRecipe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.PresetKey = ""
	if name := request.GetString("preset", ""); name != "" {
		preset, err := schema.FindPreset(cfg.Presets, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		cfg.PresetKey = preset.Key
		cfg.Request = preset.Request(cfg.Request.VolumeMl)
	}

	// Explicit numbers win over the preset; the calculator rejects bad values.
	args := request.GetArguments()
	overrides := []struct {
		key string
		dst *float64
	}{
		{"gh", &cfg.Request.GeneralHardness},
		{"kh", &cfg.Request.CarbonateHardness},
		{"mg_share", &cfg.Request.MagnesiumPct},
		{"k_share", &cfg.Request.PotassiumPct},
		{"volume", &cfg.Request.VolumeMl},
	}
	for _, o := range overrides {
		v, ok, err := numberArg(args, o.key)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid recipe parameters: %v", err)), nil
		}
		if ok {
			*o.dst = v
		}
	}

	if err := applyCalculatorOptions(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid recipe parameters: %v", err)), nil
	}

	if raw, ok := args["record"]; ok {
		record, isBool := raw.(bool)
		if !isBool {
			return mcp.NewToolResultError(fmt.Sprintf("invalid recipe parameters: record must be a boolean, got %T", raw)), nil
		}
		if !record {
			ctx = core.WithSkipHistory(ctx)
		}
	}

	result, err := core.GetRecipeResult(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("calculation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListPresets(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	volume, ok, err := numberArg(request.GetArguments(), "volume")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid preset parameters: %v", err)), nil
	}
	if ok {
		cfg.Request.VolumeMl = volume
	}
	if err := applyCalculatorOptions(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid preset parameters: %v", err)), nil
	}

	summaries, err := core.GetPresetSummaries(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("calculation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(summaries, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListProfiles(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonData, _ := json.MarshalIndent(h.baseCfg.Profiles, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// applyCalculatorOptions resolves the profile and rounding arguments shared by the tools.
func applyCalculatorOptions(cfg *contract.Config, request mcp.CallToolRequest) error {
	if name := request.GetString("profile", ""); name != "" {
		profile, err := schema.FindProfile(cfg.Profiles, name)
		if err != nil {
			return err
		}
		cfg.Profile = profile
	}
	if r := request.GetString("rounding", ""); r != "" {
		strategy, err := contract.ParseRoundingStrategy(r)
		if err != nil {
			return err
		}
		cfg.Rounding = strategy
	}
	return nil
}

// numberArg reads an optional numeric argument. ok is false when the key is absent.
func numberArg(args map[string]any, key string) (value float64, ok bool, err error) {
	raw, ok := args[key]
	if !ok {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, true, nil
	case int:
		return float64(v), true, nil
	default:
		return 0, true, fmt.Errorf("%s must be a number, got %T", key, raw)
	}
}
