package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/piggy-wanger/keep-fit/models"
)

// equipmentCatalog is the built-in gym equipment reference data.
var equipmentCatalog = []models.Equipment{
	// 自由重量
	{ID: "eq-dumbbell", Name: "哑铃", Category: "自由重量", Description: "用于力量训练的可调节重量器械"},
	{ID: "eq-barbell", Name: "杠铃", Category: "自由重量", Description: "长杆配重片，适合大重量训练"},
	{ID: "eq-kettlebell", Name: "壶铃", Category: "自由重量", Description: "球形配重器械，适合爆发力训练"},
	{ID: "eq-weight-plate", Name: "配重片", Category: "自由重量", Description: "用于杠铃和器械的配重"},
	{ID: "eq-resistance-band", Name: "弹力带", Category: "自由重量", Description: "弹性阻力训练带"},

	// 有氧器械
	{ID: "eq-treadmill", Name: "跑步机", Category: "有氧器械", Description: "室内跑步训练设备"},
	{ID: "eq-elliptical", Name: "椭圆机", Category: "有氧器械", Description: "低冲击全身有氧训练"},
	{ID: "eq-spinning", Name: "动感单车", Category: "有氧器械", Description: "室内骑行训练设备"},
	{ID: "eq-rowing", Name: "划船机", Category: "有氧器械", Description: "全身有氧划船训练"},
	{ID: "eq-stair-climber", Name: "登山机", Category: "有氧器械", Description: "模拟登山的有氧训练"},
	{ID: "eq-jump-rope", Name: "跳绳", Category: "有氧器械", Description: "便携式有氧训练工具"},

	// 力量器械
	{ID: "eq-bench-press", Name: "卧推架", Category: "力量器械", Description: "胸肌训练专用器械"},
	{ID: "eq-squat-rack", Name: "深蹲架", Category: "力量器械", Description: "腿部训练专用架子"},
	{ID: "eq-leg-press", Name: "腿举机", Category: "力量器械", Description: "坐姿腿部推举训练"},
	{ID: "eq-lat-pulldown", Name: "高位下拉机", Category: "力量器械", Description: "背部肌肉训练器械"},
	{ID: "eq-cable-machine", Name: "龙门架", Category: "力量器械", Description: "多功能绳索训练器"},
	{ID: "eq-chest-fly", Name: "蝴蝶机", Category: "力量器械", Description: "胸肌中缝训练器械"},
	{ID: "eq-shoulder-press", Name: "肩推机", Category: "力量器械", Description: "肩部推举训练器械"},
	{ID: "eq-bicep-curl", Name: "弯举机", Category: "力量器械", Description: "肱二头肌训练器械"},
	{ID: "eq-tricep-extension", Name: "臂屈伸机", Category: "力量器械", Description: "肱三头肌训练器械"},
	{ID: "eq-leg-curl", Name: "腿弯举机", Category: "力量器械", Description: "腘绳肌训练器械"},
	{ID: "eq-leg-extension", Name: "腿屈伸机", Category: "力量器械", Description: "股四头肌训练器械"},
	{ID: "eq-calf-raise", Name: "提踵机", Category: "力量器械", Description: "小腿肌肉训练器械"},
	{ID: "eq-ab-machine", Name: "腹肌训练机", Category: "力量器械", Description: "腹部肌肉训练器械"},
	{ID: "eq-smith-machine", Name: "史密斯机", Category: "力量器械", Description: "导轨式杠铃训练器"},

	// 辅助器材
	{ID: "eq-pullup-bar", Name: "引体向上杆", Category: "辅助器材", Description: "背部和手臂训练"},
	{ID: "eq-dip-station", Name: "双杠", Category: "辅助器材", Description: "臂屈伸和核心训练"},
	{ID: "eq-bench", Name: "训练凳", Category: "辅助器材", Description: "可调节角度的训练凳"},
	{ID: "eq-yoga-mat", Name: "瑜伽垫", Category: "辅助器材", Description: "地面训练和拉伸用"},
	{ID: "eq-foam-roller", Name: "泡沫轴", Category: "辅助器材", Description: "肌肉放松和按摩"},
	{ID: "eq-medicine-ball", Name: "药球", Category: "辅助器材", Description: "爆发力和核心训练"},
	{ID: "eq-stability-ball", Name: "瑞士球", Category: "辅助器材", Description: "核心稳定性训练"},
}

// SeedEquipment inserts the built-in catalog. Existing rows are left untouched
// so the seed is safe to run on every boot.
func SeedEquipment(db *gorm.DB) error {
	entries := make([]models.Equipment, len(equipmentCatalog))
	copy(entries, equipmentCatalog)
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entries).Error
}
