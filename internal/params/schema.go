package params

// Definition declares one node parameter: its default and, for option
// parameters, the closed list of values it may take.
type Definition struct {
	Name    string
	Default any

	// Options lists the accepted values. Empty means free-form.
	Options []string

	// Multi marks a parameter that resolves to a list of values.
	Multi bool

	// NoExpression rejects per-item expressions for selector parameters.
	NoExpression bool
}

// Schema is the set of parameters a node declares.
type Schema []Definition

// Lookup returns the definition for name.
func (s Schema) Lookup(name string) (Definition, bool) {
	for _, def := range s {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// Parameter names declared by the Cost Explorer node.
const (
	ParamResource    = "resource"
	ParamOperation   = "operation"
	ParamStartDate   = "startDate"
	ParamEndDate     = "endDate"
	ParamGranularity = "granularity"
	ParamMetrics     = "metrics"
	ParamDimension   = "dimension"
)

// CostExplorerSchema declares the parameters of the Cost Explorer node.
var CostExplorerSchema = Schema{
	{
		Name:         ParamResource,
		Default:      "costAndUsage",
		Options:      []string{"costAndUsage", "dimensionValues"},
		NoExpression: true,
	},
	{
		Name:         ParamOperation,
		Default:      "get",
		Options:      []string{"get"},
		NoExpression: true,
	},
	{Name: ParamStartDate, Default: ""},
	{Name: ParamEndDate, Default: ""},
	{
		Name:    ParamGranularity,
		Default: "MONTHLY",
		Options: []string{"DAILY", "MONTHLY", "HOURLY"},
	},
	{
		Name:    ParamMetrics,
		Default: []string{"UnblendedCost"},
		Options: []string{"BlendedCost", "UnblendedCost", "UsageQuantity"},
		Multi:   true,
	},
	{
		Name:    ParamDimension,
		Default: "SERVICE",
		Options: []string{"SERVICE", "LINKED_ACCOUNT", "INSTANCE_TYPE", "REGION"},
	},
}
