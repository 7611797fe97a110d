package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/payables"
	"github.com/frahmantamala/asset-management/internal/rbac"
	rbacpg "github.com/frahmantamala/asset-management/internal/rbac/postgres"
	"github.com/frahmantamala/asset-management/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initORM(sqlDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		ctx := context.Background()

		if clearData {
			for _, table := range []string{"audit_logs", "notifications", "bills", "agreements", "gate_passes", "assets", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		roleService := rbac.NewService(rbacpg.NewRoleRepository(db), logger.LoggerWrapper())
		if err := roleService.EnsureDefaults(ctx); err != nil {
			log.Fatalf("failed to seed default roles: %v", err)
		}
		fmt.Println("Seeded default role bundles")

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)

		users := []struct {
			Username   string
			Role       string
			BranchCode string
			BranchName string
			ManagerOf  []string
		}{
			{Username: "admin", Role: "Admin"},
			{Username: "headoffice", Role: "HO"},
			{Username: "priya", Role: "Manager", BranchCode: "BR1", BranchName: "Calicut"},
			{Username: "ravi", Role: "Branch User", BranchCode: "BR1", BranchName: "Calicut"},
			{Username: "meera", Role: "Branch User", BranchCode: "BR2", BranchName: "Kochi"},
		}

		ids := map[string]int64{}
		for _, u := range users {
			var exists int64
			row := db.Raw("SELECT id FROM users WHERE username = ?", u.Username).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("user %s already exists, skipping\n", u.Username)
				ids[u.Username] = exists
				continue
			}
			if err := db.Exec(
				"INSERT INTO users (username, password_hash, role, branch_code, branch_name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, now(), now())",
				u.Username, string(hash), u.Role, u.BranchCode, u.BranchName,
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Username, err)
			}
			var id int64
			if err := db.Raw("SELECT id FROM users WHERE username = ?", u.Username).Row().Scan(&id); err != nil {
				log.Fatalf("failed to read back user %s: %v", u.Username, err)
			}
			ids[u.Username] = id
			fmt.Println("Seeded user:", u.Username)
		}

		// Branch users in BR1 report to priya. BR2 stays unmanaged so the
		// manager scope seed exercises a real subset.
		if managerID, ok := ids["priya"]; ok {
			if err := db.Exec(
				"UPDATE users SET manager_id = ? WHERE role = ? AND branch_code = ? AND username <> ?",
				managerID, "Branch User", "BR1", "priya",
			).Error; err != nil {
				log.Fatalf("failed to link manager hierarchy: %v", err)
			}
		}

		today := time.Now().Format(asset.DateLayout)
		sampleAssets := []asset.Asset{
			{Name: "Dell Latitude 5440", TagNumber: "IT-0001", Type: "IT Equipment", BranchCode: "BR1", BranchName: "Calicut", Status: asset.StatusActive, PurchaseDate: today, CreatedBy: "admin"},
			{Name: "Godrej Storage Cabinet", TagNumber: "FUR-0001", Type: "Furniture", BranchCode: "BR2", BranchName: "Kochi", Status: asset.StatusActive, PurchaseDate: today, CreatedBy: "admin"},
		}
		for i := range sampleAssets {
			a := &sampleAssets[i]
			var exists int64
			if err := db.Raw("SELECT id FROM assets WHERE tag_number = ?", a.TagNumber).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Create(a).Error; err != nil {
				log.Fatalf("failed to insert asset %s: %v", a.TagNumber, err)
			}
			fmt.Println("Seeded asset:", a.TagNumber)
		}

		agreement := payables.Agreement{
			ContractID:    "AGR-SEED-0001",
			VendorName:    "Malabar Rentals",
			BranchCode:    "BR1",
			Type:          "Rent Agreement",
			BillType:      payables.AgreementToBillType["Rent Agreement"],
			Amount:        25000,
			AgreementDate: today,
			Status:        payables.AgreementStatusActive,
			CreatedBy:     "admin",
		}
		var exists int64
		if err := db.Raw("SELECT id FROM agreements WHERE contract_id = ?", agreement.ContractID).Row().Scan(&exists); err != nil {
			if err := db.Create(&agreement).Error; err != nil {
				log.Fatalf("failed to insert agreement: %v", err)
			}
			fmt.Println("Seeded agreement:", agreement.ContractID)
		}

		fmt.Println("Seeding complete")
	},
}
