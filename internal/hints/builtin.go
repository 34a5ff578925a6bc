package hints

import "basegraph.app/triage/internal/model"

const frontendWiki = "https://github.com/adwyze/adwyze-frontend/wiki"

var builtin = []model.ServiceHint{
	{
		Name:  "google_ads_breakdowns",
		Repos: []string{"adwyze"},
		Directories: map[string][]string{"adwyze": {
			"app/models/base_adwords_segment_type.rb",
			"app/models/base_adwords_segment_report.rb",
			"app/annotators/adwords/base_adwords_segment_tag_annotator.rb",
			"app/adwords/adwords/api/client.rb",
		}},
		Runbook:     "docs/adding_new_breakdown.md",
		Keywords:    []string{"Google Ads", "AdWords", "breakdown", "segment"},
		TopicTokens: []string{"google-ads", "gaql-breakdowns"},
	},
	{
		Name:  "custom_analytics_dereferencing",
		Repos: []string{"adwyze"},
		Directories: map[string][]string{"adwyze": {
			"config/channels",
			"app/models/taboola_ad_account.rb",
			"lib/ad_references_module",
		}},
		Runbook:     "docs/ca_integration.md",
		Keywords:    []string{"custom analytics", "CA", "deref", "channel schema"},
		TopicTokens: []string{"custom-analytics", "ca-deref"},
	},
	{
		Name:  "vibetv_custom_channel",
		Repos: []string{"adwyze"},
		Directories: map[string][]string{"adwyze": {
			"app/vibe_tv/vibe_tv/client.rb",
			"lib/vibe_tv_input_source.rb",
			"private/schemas/custom_channel/v1/vibe_tv.json",
			"python/ingestion_pipeline/airflow/dags/dags/generated/custom_advertising/vibe_tv.py",
		}},
		Runbook:     "docs/vibetv_integration.md",
		Keywords:    []string{"VibeTV", "CTV channel", "async report", "Pi CADV"},
		TopicTokens: []string{"vibetv"},
	},
	{
		Name:  "mediago_custom_channel",
		Repos: []string{"adwyze"},
		Directories: map[string][]string{"adwyze": {
			"app/mediago/mediago/client.rb",
			"lib/mediago_input_source.rb",
			"private/schemas/custom_channel/v1/mediago.json",
			"python/ingestion_pipeline/airflow/dags/dags/generated/custom_advertising/mediago.py",
		}},
		Runbook:     "docs/mediago_integration.md",
		Keywords:    []string{"MediaGo", "Baidu", "custom channel", "Pi CADV"},
		TopicTokens: []string{"mediago"},
	},
	{
		Name:  "picadv_ad_previews",
		Repos: []string{"adwyze"},
		Directories: map[string][]string{"adwyze": {
			"app/annotators/custom_advertising/custom_advertising_ad_tag_annotator.rb",
			"app/custom_advertising/base_custom_advertising_object.rb",
			"lib/creative_preview/base_pi_preview.rb",
			"lib/creative_preview/facebook_preview.rb",
			"lib/creative_preview/tiktok_preview.rb",
		}},
		Runbook:     "PI-CADV Ad Preview Framework.md",
		Keywords:    []string{"ad preview", "creative preview", "PI CADV", "custom advertising"},
		TopicTokens: []string{"ad-preview", "pi-cadv-previews"},
	},
	{
		Name:  "dashboard_reporting",
		Repos: []string{"adwyze-frontend"},
		Directories: map[string][]string{"adwyze-frontend": {
			"src/apps/dashboard/components/Report.tsx",
			"src/apps/dashboard/actions",
			"src/apps/dashboard/sagas",
		}},
		Runbook:     frontendWiki,
		Keywords:    []string{"dashboard", "reports", "widgets", "report tabs", "shared report"},
		TopicTokens: []string{"/dashboard", "/r/:id", "scheduled-report"},
	},
	{
		Name:  "integrations_control_center",
		Repos: []string{"adwyze-frontend"},
		Directories: map[string][]string{"adwyze-frontend": {
			"src/apps/Integrations/MainIntegrationsPage.tsx",
			"src/apps/Integrations/components",
			"src/apps/Integrations/sagas",
		}},
		Runbook:     frontendWiki,
		Keywords:    []string{"integrations", "connections", "onboarding", "ad accounts", "connected channels"},
		TopicTokens: []string{"/integrations", "ad_accounts", "onboarding"},
	},
	{
		Name:  "custom_metrics_workspace",
		Repos: []string{"adwyze-frontend"},
		Directories: map[string][]string{"adwyze-frontend": {
			"src/apps/CustomMetricsNew/MetricsPage.tsx",
			"src/apps/CustomMetricsNew/MetricsGroups",
			"src/apps/CustomMetricsNew/Metric",
		}},
		Runbook:     frontendWiki,
		Keywords:    []string{"custom metrics", "metric builder", "metric groups", "kpi definitions"},
		TopicTokens: []string{"custom-metrics", "metric-groups"},
	},
	{
		Name:  "custom_dimensions_workspace",
		Repos: []string{"adwyze-frontend"},
		Directories: map[string][]string{"adwyze-frontend": {
			"src/apps/CustomDimensionsV2/components",
			"src/apps/CustomDimensionsV2/sagas",
			"src/apps/CustomDimensionsV2/api.ts",
		}},
		Runbook:     frontendWiki,
		Keywords:    []string{"custom dimensions", "dimension builder", "attributes", "data enrichment"},
		TopicTokens: []string{"custom-dimensions"},
	},
	{
		Name:  "preferences_center",
		Repos: []string{"adwyze-frontend"},
		Directories: map[string][]string{"adwyze-frontend": {
			"src/apps/Preferences/components",
			"src/apps/Preferences/services",
			"src/apps/Preferences/index.jsx",
		}},
		Runbook:     frontendWiki,
		Keywords:    []string{"preferences", "teams", "roles", "segments", "notifications"},
		TopicTokens: []string{"/dashboard/preferences", "manage-users", "teams"},
	},
	{
		Name:  "agency_portal",
		Repos: []string{"adwyze-frontend"},
		Directories: map[string][]string{"adwyze-frontend": {
			"src/apps/agency/AgencyContainer.jsx",
			"src/apps/agency/actions",
			"src/apps/login/AgencyLogin.jsx",
		}},
		Runbook:     frontendWiki,
		Keywords:    []string{"agency portal", "user agencies", "agency login", "partner onboarding"},
		TopicTokens: []string{"user_agencies", "agency-login", "agency-sign-up"},
	},
	{
		Name:  "admin_console_and_tools",
		Repos: []string{"adwyze-frontend"},
		Directories: map[string][]string{"adwyze-frontend": {
			"src/apps/admins",
			"src/apps/adminTools/ReportDuplicator",
			"src/apps/adminTools/BrowseGCS",
			"src/apps/adminTools/ManageProjectionMetrics",
		}},
		Runbook:     frontendWiki,
		Keywords:    []string{"admin", "company management", "report duplicator", "gcs browser", "projection metrics"},
		TopicTokens: []string{"/admins", "admin-tools", "company-preferences"},
	},
	{
		Name:  "data_quality_sanity_checker",
		Repos: []string{"adwyze-frontend"},
		Directories: map[string][]string{"adwyze-frontend": {
			"src/apps/SanityChecker/SanityCheckCreator.jsx",
			"src/apps/SanityChecker/SanityCheckerDataModal.tsx",
			"src/apps/SanityChecker/AdvertisingBackfill.jsx",
		}},
		Runbook:     frontendWiki,
		Keywords:    []string{"sanity checker", "data quality", "backfill", "sanity checks"},
		TopicTokens: []string{"sanity-checker", "backfill"},
	},
	{
		Name:  "internal_query_consoles",
		Repos: []string{"adwyze-frontend"},
		Directories: map[string][]string{"adwyze-frontend": {
			"src/apps/Querier",
			"src/apps/adminTools/SnowflakeQuerier/SnowflakeQuerier.tsx",
			"src/apps/adminTools/DataExporterLogs",
		}},
		Runbook:     frontendWiki,
		Keywords:    []string{"bigquery", "snowflake", "admin query", "data exporter logs"},
		TopicTokens: []string{"query-bigquery", "query-snowflake", "data-exporter"},
	},
}
