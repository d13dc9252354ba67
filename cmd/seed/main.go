package main

import (
	"fmt"
	"log"

	"github.com/roleplayhq/roleplay-backend/config"
	"github.com/roleplayhq/roleplay-backend/internal/app/model"
	"github.com/roleplayhq/roleplay-backend/internal/app/repository"
	"github.com/roleplayhq/roleplay-backend/internal/app/service"
	"github.com/roleplayhq/roleplay-backend/internal/db"
	"github.com/roleplayhq/roleplay-backend/pkg/util"
)

// Seeds a development database with a handful of users and groups so the
// frontend has something to show. Not meant for production.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	groupRepo := repository.NewGroupRepository(db.GetDB())

	fmt.Print("This will insert demo users and groups. Proceed? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Seed cancelled.")
		return
	}

	users := []struct {
		username string
		email    string
	}{
		{"alice", "alice@example.com"},
		{"bob", "bob@example.com"},
		{"carol", "carol@example.com"},
	}

	hash, err := util.HashPassword("secret123")
	if err != nil {
		log.Fatal("Failed to hash seed password:", err)
	}

	created := make(map[string]*model.User)
	for _, u := range users {
		existing, err := userRepo.FindByEmail(u.email)
		if err == nil && existing != nil {
			fmt.Printf("User %s already exists, skipping\n", u.email)
			created[u.username] = existing
			continue
		}

		user := &model.User{
			Username:     u.username,
			Email:        u.email,
			PasswordHash: hash,
		}
		if err := userRepo.Create(user); err != nil {
			log.Fatal("Failed to create seed user:", err)
		}
		created[u.username] = user
		fmt.Printf("Created user %s (%s)\n", u.username, u.email)
	}

	groups := []service.CreateGroupInput{
		{
			Name:        "Curse of Strahd",
			Description: "Gothic horror campaign for brave souls",
			Chronic:     "The party has just arrived in Barovia.",
			Schedule:    "Fridays 19:00",
			Location:    "Online",
			Master:      created["alice"].ID,
		},
		{
			Name:        "Rime of the Frostmaiden",
			Description: "Icewind Dale survival campaign",
			Chronic:     "Ten-Towns is frozen over.",
			Schedule:    "Sundays 15:00",
			Location:    "Downtown game store",
			Master:      created["bob"].ID,
		},
	}

	groupService := service.NewGroupService(groupRepo)
	for _, input := range groups {
		group, err := groupService.CreateGroup(input)
		if err != nil {
			log.Fatal("Failed to create seed group:", err)
		}
		fmt.Printf("Created group %s (id=%d)\n", group.Name, group.ID)
	}

	fmt.Println("Seed completed successfully!")
}
