package domain

type Operator struct {
	ID         int64  `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	Username   string `db:"username" json:"username"`
	Password   string `db:"password" json:"-"`
	IsAdmin    bool   `db:"is_admin" json:"is_admin"`
	TotalSales int64  `db:"total_sales" json:"total_sales"`
}

// Session identifies the operator performing an action. It is handed to the
// sale service by the caller on every call.
type Session struct {
	OperatorID   int64  `json:"operator_id"`
	OperatorName string `json:"operator_name"`
	IsAdmin      bool   `json:"is_admin"`
}

// Session returns the session value for a logged-in operator.
func (o Operator) Session() Session {
	return Session{OperatorID: o.ID, OperatorName: o.Name, IsAdmin: o.IsAdmin}
}
