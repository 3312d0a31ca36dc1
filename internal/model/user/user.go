package user

// User 对应数据源中的一条用户记录。
type User struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Gender    string `json:"gender"`
	IPAddress string `json:"ip_address"`
}

// RequiredFields lists the keys every source record must carry, in column order.
var RequiredFields = []string{"id", "first_name", "last_name", "email", "gender", "ip_address"}
