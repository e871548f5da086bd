// Package backup dumps application tables as an SQL script of INSERT
// statements and restores such a script.
package backup

// Tables lists every application table, parents before children.
var Tables = []string{
	"organizations",
	"users",
	"categories",
	"products",
	"components",
	"product_components",
	"option_groups",
	"options",
	"customers",
	"suppliers",
	"purchase_orders",
	"purchase_order_items",
	"shifts",
	"orders",
	"order_items",
	"payments",
	"inventory_logs",
	"currency_rates",
	"achievements",
	"user_achievements",
}

func known(table string) bool {
	for _, t := range Tables {
		if t == table {
			return true
		}
	}
	return false
}

// RestoreResult reports what a restore executed.
type RestoreResult struct {
	Statements int            `json:"statements"`
	Rows       map[string]int `json:"rows"`
}
