package agent

import "kraken-console/internal/catalog"

// CommandTools returns the function schemas the interpreter exposes to
// the model, one per dispatchable command.
func CommandTools() []ToolSpec {
	portalIDs := portalEnum()
	closeIDs := append(append([]string{}, portalIDs...), "all")

	return []ToolSpec{
		{
			Name:        "open_portal",
			Description: "Open a specific portal in the Kraken interface at Level 2 (grid) or Level 3 (fullscreen)",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"portal_type": map[string]any{
						"type":        "string",
						"enum":        portalIDs,
						"description": "Type of portal to open (e.g., weather, alerts, map, timeline, camera-capability)",
					},
					"level": map[string]any{
						"type":        "integer",
						"enum":        []int{2, 3},
						"description": "Portal level: 2 for grid view, 3 for fullscreen",
					},
				},
				"required": []string{"portal_type"},
			},
		},
		{
			Name:        "close_portal",
			Description: "Close a specific portal or all portals",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"portal_type": map[string]any{
						"type":        "string",
						"enum":        closeIDs,
						"description": "Type of portal to close, or \"all\" to close all portals",
					},
				},
				"required": []string{"portal_type"},
			},
		},
		{
			Name:        "show_weather",
			Description: "Display weather information for a specific location",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": "Location for weather information (e.g., \"New York\", \"Tel Aviv\")",
					},
					"level": map[string]any{
						"type":        "integer",
						"enum":        []int{2, 3},
						"description": "Display level: 2 for compact view, 3 for detailed view",
					},
				},
			},
		},
		{
			Name:        "analyze_threats",
			Description: "Analyze current threat situation and display alerts",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"severity_filter": map[string]any{
						"type":        "string",
						"enum":        []string{"all", "critical", "high", "medium", "low"},
						"description": "Filter threats by severity level",
					},
					"threat_type": map[string]any{
						"type":        "string",
						"enum":        []string{"all", "air", "ground", "cyber", "missile"},
						"description": "Filter by threat type",
					},
				},
			},
		},
		{
			Name:        "navigate_map",
			Description: "Control map navigation and display specific areas or threats",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"action": map[string]any{
						"type":        "string",
						"enum":        []string{"zoom_to", "show_threats", "show_assets", "center_on"},
						"description": "Map navigation action",
					},
					"location": map[string]any{
						"type":        "string",
						"description": "Location name or coordinates",
					},
					"zoom_level": map[string]any{
						"type":        "integer",
						"minimum":     1,
						"maximum":     20,
						"description": "Map zoom level (1-20)",
					},
				},
				"required": []string{"action"},
			},
		},
		{
			Name:        "expand_portal",
			Description: "Expand an open portal to fullscreen",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"portal_type": map[string]any{
						"type":        "string",
						"enum":        portalIDs,
						"description": "Portal to promote to fullscreen",
					},
				},
				"required": []string{"portal_type"},
			},
		},
		{
			Name:        "control_interface",
			Description: "Control general Kraken interface settings and appearance",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"action": map[string]any{
						"type":        "string",
						"enum":        []string{"minimize_all", "maximize_all", "toggle_grid", "change_theme"},
						"description": "Interface control action",
					},
					"setting": map[string]any{
						"type":        "string",
						"description": "Additional setting parameter if needed",
					},
				},
				"required": []string{"action"},
			},
		},
		{
			Name:        "filter_alerts",
			Description: "Filter the alerts portal by type, severity or resolution state",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"alert_type": map[string]any{
						"type": "string",
						"enum": []string{"all", "threat", "system"},
					},
					"severity": map[string]any{
						"type": "string",
						"enum": []string{"all", "critical", "high", "medium", "low"},
					},
					"show_resolved": map[string]any{
						"type": "boolean",
					},
					"sort_by": map[string]any{
						"type": "string",
						"enum": []string{"timestamp", "severity"},
					},
				},
			},
		},
		{
			Name:        "acknowledge_alert",
			Description: "Acknowledge an alert by id or by title",
			Parameters:  alertTargetParams(),
		},
		{
			Name:        "resolve_alert",
			Description: "Resolve an alert by id or by title",
			Parameters:  alertTargetParams(),
		},
		{
			Name:        "escalate_alert",
			Description: "Escalate an alert by id or by title",
			Parameters:  alertTargetParams(),
		},
	}
}

func alertTargetParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"alert_id": map[string]any{
				"type":        "string",
				"description": "Exact alert id",
			},
			"alert_title": map[string]any{
				"type":        "string",
				"description": "Case-insensitive substring of the alert title",
			},
		},
	}
}

func portalEnum() []string {
	all := catalog.All()
	ids := make([]string, 0, len(all))
	for _, d := range all {
		ids = append(ids, d.ID)
	}
	return ids
}
