package taxonomy

// DefaultDefinitions returns the built-in MudBlazor category table
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Name:        "Buttons",
			Title:       "Buttons",
			Description: "Clickable controls that trigger actions.",
			Components: []string{
				"MudButton", "MudIconButton", "MudFab", "MudToggleIconButton",
				"MudButtonGroup", "MudToggleGroup", "MudToggleItem",
			},
		},
		{
			Name:        "Inputs",
			Title:       "Form Inputs & Controls",
			Description: "Text fields, selects, pickers and other controls for collecting user input.",
			Components: []string{
				"MudTextField", "MudNumericField", "MudSelect", "MudSelectItem", "MudAutocomplete",
				"MudCheckBox", "MudRadio", "MudRadioGroup", "MudSwitch", "MudSlider", "MudRating",
				"MudDatePicker", "MudDateRangePicker", "MudTimePicker", "MudColorPicker",
				"MudFileUpload", "MudForm", "MudField", "MudInput", "MudInputLabel", "MudMask",
			},
		},
		{
			Name:        "Navs",
			Title:       "Navigation",
			Description: "Menus, tabs, links and other components for moving around an application.",
			Components: []string{
				"MudNavMenu", "MudNavLink", "MudNavGroup", "MudMenu", "MudMenuItem",
				"MudTabs", "MudTabPanel", "MudDynamicTabs", "MudBreadcrumbs", "MudLink",
				"MudPagination", "MudStepper", "MudDrawer", "MudAppBar", "MudScrollToTop",
			},
		},
		{
			Name:        "Surfaces",
			Title:       "Surfaces",
			Description: "Containers that give content elevation and structure.",
			Components: []string{
				"MudPaper", "MudCard", "MudCardHeader", "MudCardContent", "MudCardActions", "MudCardMedia",
				"MudExpansionPanels", "MudExpansionPanel", "MudToolBar",
			},
		},
		{
			Name:        "Notifications",
			Title:       "Feedback & Notifications",
			Description: "Alerts, dialogs, snackbars and overlays that communicate state to the user.",
			Components: []string{
				"MudAlert", "MudSnackbarProvider", "MudDialog", "MudMessageBox", "MudBadge",
				"MudTooltip", "MudPopover", "MudOverlay", "MudHighlighter",
			},
		},
		{
			Name:        "Lists",
			Title:       "Data Display",
			Description: "Lists, tables, trees and other components for presenting collections.",
			Components: []string{
				"MudList", "MudListItem", "MudListSubheader", "MudTable", "MudSimpleTable", "MudDataGrid",
				"MudTreeView", "MudTreeViewItem", "MudTimeline", "MudTimelineItem", "MudCarousel",
				"MudChip", "MudChipSet", "MudVirtualize",
			},
		},
		{
			Name:        "Layouts",
			Title:       "Layout",
			Description: "Grid, stack and container primitives for arranging content.",
			Components: []string{
				"MudLayout", "MudMainContent", "MudContainer", "MudGrid", "MudItem", "MudStack",
				"MudSpacer", "MudDivider", "MudHidden", "MudBreakpointProvider",
			},
		},
		{
			Name:        "Progress",
			Title:       "Progress",
			Description: "Indicators for loading and long-running work.",
			Components: []string{
				"MudProgressCircular", "MudProgressLinear", "MudSkeleton",
			},
		},
		{
			Name:        "Utilities",
			Title:       "Utilities",
			Description: "Providers, theming and behavioral helpers with little or no visual output.",
			Components: []string{
				"MudThemeProvider", "MudPopoverProvider", "MudDialogProvider", "MudFocusTrap",
				"MudScrollManager", "MudElement", "MudRender", "MudSwipeArea", "MudDropContainer",
				"MudDropZone", "MudIcon", "MudImage", "MudAvatar", "MudAvatarGroup", "MudText",
			},
		},
		{
			Name:        Fallback,
			Title:       "Extras",
			Description: "Components that do not fit any other category.",
			Components: []string{
				"MudChart", "MudCollapse", "MudHotkey", "MudRTLProvider",
			},
		},
	}
}
