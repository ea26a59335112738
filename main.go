package main

import (
	"github.com/piggy-wanger/keep-fit/config"
	"github.com/piggy-wanger/keep-fit/models"
	"github.com/piggy-wanger/keep-fit/routes"
	"github.com/piggy-wanger/keep-fit/services"
	"github.com/piggy-wanger/keep-fit/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.CheckIn{},
		&models.HealthRecord{},
		&models.HealthThreshold{},
		&models.TrainingPlan{},
		&models.PlanItem{},
		&models.TrainingLog{},
		&models.LogItem{},
		&models.Equipment{},
		&models.UserEquipment{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Partner{},
		&models.FitnessGroup{},
		&models.GroupMember{},
		&models.AIConfig{},
	)

	// Seed the immutable catalogs. Reruns are no-ops.
	if err := services.SeedAchievements(db); err != nil {
		utils.Sugar.Fatalf("failed to seed achievements: %v", err)
	}
	if err := services.SeedEquipment(db); err != nil {
		utils.Sugar.Fatalf("failed to seed equipment: %v", err)
	}

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
