package opex

// Field is one node of the static expense taxonomy. Leaves (no children)
// accept entered amounts; parents roll their descendants up.
type Field struct {
	Key          string
	Label        string
	DefaultBasis Basis
	Children     []Field
}

// MultifamilyFields is the three-level expense taxonomy for multifamily
// assets: category, field, subfield.
var MultifamilyFields = []Field{
	{
		Key: "taxes_insurance", Label: "Taxes & Insurance",
		Children: []Field{
			{Key: "real_estate_taxes", Label: "Real Estate Taxes", DefaultBasis: BasisFixed},
			{Key: "property_insurance", Label: "Property Insurance", DefaultBasis: BasisPerUnit},
		},
	},
	{
		Key: "utilities", Label: "Utilities",
		Children: []Field{
			{
				Key: "electric_gas", Label: "Electric & Gas", DefaultBasis: BasisPerUnit,
				Children: []Field{
					{Key: "electric_common", Label: "Common Area Electric", DefaultBasis: BasisPerUnit},
					{Key: "gas_common", Label: "Common Area Gas", DefaultBasis: BasisPerUnit},
				},
			},
			{
				Key: "water_sewer", Label: "Water & Sewer", DefaultBasis: BasisPerUnit,
				Children: []Field{
					{Key: "water", Label: "Water", DefaultBasis: BasisPerUnit},
					{Key: "sewer", Label: "Sewer", DefaultBasis: BasisPerUnit},
				},
			},
			{Key: "trash", Label: "Trash Removal", DefaultBasis: BasisPerUnit},
		},
	},
	{
		Key: "payroll", Label: "Payroll & Benefits",
		Children: []Field{
			{Key: "onsite_management", Label: "On-Site Management", DefaultBasis: BasisPerUnit},
			{Key: "maintenance_staff", Label: "Maintenance Staff", DefaultBasis: BasisPerUnit},
			{Key: "leasing_staff", Label: "Leasing Staff", DefaultBasis: BasisPerUnit},
		},
	},
	{
		Key: "repairs_maintenance", Label: "Repairs & Maintenance",
		Children: []Field{
			{Key: "general_repairs", Label: "General Repairs", DefaultBasis: BasisPerUnit},
			{Key: "turnover", Label: "Unit Turnover", DefaultBasis: BasisPerUnit},
			{Key: "landscaping", Label: "Landscaping & Grounds", DefaultBasis: BasisFixed},
			{Key: "pest_control", Label: "Pest Control", DefaultBasis: BasisPerUnit},
		},
	},
	{
		Key: "administrative", Label: "Administrative",
		Children: []Field{
			{Key: "management_fee", Label: "Management Fee", DefaultBasis: BasisPctEGI},
			{Key: "marketing", Label: "Marketing & Advertising", DefaultBasis: BasisPerUnit},
			{Key: "office_expense", Label: "Office Expense", DefaultBasis: BasisFixed},
			{Key: "legal_professional", Label: "Legal & Professional", DefaultBasis: BasisFixed},
		},
	},
	{
		Key: "reserves", Label: "Replacement Reserves",
		Children: []Field{
			{Key: "capital_reserves", Label: "Capital Reserves", DefaultBasis: BasisPerUnit},
		},
	},
}

// fieldIndex maps field keys to their node and depth for O(1) lookup.
type fieldIndex struct {
	node  Field
	level int
	leaf  bool
}

var index = buildIndex(MultifamilyFields, 0, map[string]fieldIndex{})

func buildIndex(fields []Field, level int, idx map[string]fieldIndex) map[string]fieldIndex {
	for _, f := range fields {
		idx[f.Key] = fieldIndex{node: f, level: level, leaf: len(f.Children) == 0}
		buildIndex(f.Children, level+1, idx)
	}
	return idx
}

// KnownField reports whether key exists in the taxonomy.
func KnownField(key string) bool {
	_, ok := index[key]
	return ok
}

// LeafField reports whether key is a leaf that accepts entered amounts.
func LeafField(key string) bool {
	fi, ok := index[key]
	return ok && fi.leaf
}

// FieldLabel returns the display label for a key, or the key itself when
// unknown.
func FieldLabel(key string) string {
	if fi, ok := index[key]; ok {
		return fi.node.Label
	}
	return key
}

// DefaultBasisFor returns the taxonomy's default basis for a leaf key.
func DefaultBasisFor(key string) (Basis, bool) {
	fi, ok := index[key]
	if !ok || !fi.leaf {
		return "", false
	}
	return fi.node.DefaultBasis, true
}

// Rollup builds the summary tree from annualized amounts keyed by leaf field.
// Parent node amounts are the sum of their descendants.
func Rollup(annualized map[string]float64) ([]SummaryNode, float64) {
	var total float64
	nodes := rollupLevel(MultifamilyFields, 0, annualized)
	for _, n := range nodes {
		total += n.Amount
	}
	return nodes, total
}

func rollupLevel(fields []Field, level int, annualized map[string]float64) []SummaryNode {
	out := make([]SummaryNode, 0, len(fields))
	for _, f := range fields {
		node := SummaryNode{Key: f.Key, Label: f.Label, Level: level}
		if len(f.Children) == 0 {
			node.Amount = annualized[f.Key]
			node.Direct = node.Amount != 0
		} else {
			node.Children = rollupLevel(f.Children, level+1, annualized)
			for _, c := range node.Children {
				node.Amount += c.Amount
			}
		}
		out = append(out, node)
	}
	return out
}
