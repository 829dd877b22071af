package benchmark

// DefaultAliases are well-known alternate names for common system
// categories. Template aliases are checked before these.
var DefaultAliases = map[string][]string{
	"erp": {
		"enterprise resource planning", "sap", "s 4hana", "oracle e business suite",
		"netsuite", "dynamics 365 finance", "infor", "epicor", "jd edwards",
	},
	"crm": {
		"customer relationship management", "salesforce", "sales cloud",
		"dynamics 365 sales", "hubspot", "zoho crm",
	},
	"email": {
		"exchange", "exchange online", "outlook", "office 365", "microsoft 365", "gmail",
		"google workspace",
	},
	"collaboration": {"teams", "microsoft teams", "slack", "zoom", "webex"},
	"hris": {
		"human resources information system", "hcm", "workday", "adp", "bamboohr",
		"ukg", "paycom", "paylocity",
	},
	"payroll":             {"adp", "paychex", "paylocity", "gusto"},
	"accounting":          {"general ledger", "quickbooks", "sage intacct", "xero", "netsuite"},
	"general_ledger":      {"gl", "accounting", "quickbooks", "sage intacct"},
	"identity_management": {"iam", "active directory", "azure ad", "entra id", "okta", "ping identity"},
	"endpoint_security":   {"edr", "antivirus", "crowdstrike", "sentinelone", "defender for endpoint"},
	"backup":              {"backup and recovery", "veeam", "commvault", "rubrik", "datto"},
	"service_desk":        {"itsm", "help desk", "helpdesk", "servicenow", "jira service management", "zendesk"},
	"document_management": {"dms", "ecm", "enterprise content management", "sharepoint", "onbase", "laserfiche"},
	"business_intelligence": {
		"bi", "analytics", "power bi", "tableau", "qlik", "looker",
	},
	"policy_administration": {
		"policy admin", "pas", "policy administration system", "policycenter",
		"policy management",
	},
	"claims_management":   {"claims", "claims system", "claimcenter"},
	"billing":             {"billing system", "billingcenter"},
	"rating_engine":       {"rating", "rater"},
	"ehr":                 {"electronic health record", "emr", "electronic medical record", "epic", "cerner", "athenahealth"},
	"practice_management": {"pm system", "practice management system"},
	"mes":                 {"manufacturing execution system"},
	"plm":                 {"product lifecycle management", "windchill", "teamcenter"},
	"wms":                 {"warehouse management", "warehouse management system", "manhattan"},
	"tms":                 {"transportation management", "transportation management system"},
	"pos":                 {"point of sale", "point of sale system"},
	"ecommerce":           {"e commerce", "shopify", "magento", "bigcommerce"},
	"core_banking":        {"core banking system", "fiserv", "jack henry", "fis"},
	"loan_origination":    {"los", "loan origination system", "encompass"},
}

// DefaultRoleServices are common MSP service names for staffing role
// categories, already normalized. Template role services are checked first.
var DefaultRoleServices = map[string][]string{
	"service_desk":   {"help desk", "helpdesk", "end user support", "desktop support", "user support"},
	"infrastructure": {"network", "hosting", "data center", "cloud operations", "server management", "managed infrastructure"},
	"security":       {"soc", "mssp", "mdr", "security operations", "security monitoring", "managed security"},
	"applications":   {"application support", "application development", "application management"},
	"leadership":     {"vcio", "virtual cio", "fractional cio"},
}
