package services

// CheckInType describes one of the fixed daily check-in categories and the
// experience awarded for completing it.
type CheckInType struct {
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	ExpReward int    `json:"exp_reward"`
}

// CheckInTypes is the fixed registry of supported check-in categories.
var CheckInTypes = map[string]CheckInType{
	"exercise":   {Name: "运动打卡", Icon: "🏃", ExpReward: 20},
	"water":      {Name: "喝水打卡", Icon: "💧", ExpReward: 5},
	"sleep":      {Name: "早睡打卡", Icon: "😴", ExpReward: 10},
	"diet":       {Name: "健康饮食", Icon: "🥗", ExpReward: 10},
	"meditation": {Name: "冥想打卡", Icon: "🧘", ExpReward: 15},
	"steps":      {Name: "步数达标", Icon: "👟", ExpReward: 15},
}

// ValidCheckInType reports whether t names a supported check-in category.
func ValidCheckInType(t string) bool {
	_, ok := CheckInTypes[t]
	return ok
}
