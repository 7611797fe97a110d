package cmd

import (
	"context"
	"fmt"
	"log"

	assetpg "github.com/frahmantamala/asset-management/internal/asset/postgres"
	payablespg "github.com/frahmantamala/asset-management/internal/payables/postgres"
	"github.com/frahmantamala/asset-management/internal/scope"
	userpg "github.com/frahmantamala/asset-management/internal/user/postgres"
	"github.com/frahmantamala/asset-management/internal/workbook"
	"github.com/frahmantamala/asset-management/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var workbookCmd = &cobra.Command{
	Use:   "workbook",
	Short: "Import or export xlsx workbooks",
	Long:  `Load a legacy xlsx register into the database, or write the current asset register out as xlsx.`,
}

var workbookImportCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import users, assets, agreements and bills from an xlsx workbook",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db := openWorkbookORM()
		importer := workbook.NewImporter(
			userpg.NewUserRepository(db),
			assetpg.NewAssetRepository(db),
			payablespg.NewAgreementRepository(db),
			payablespg.NewBillRepository(db),
			logger.LoggerWrapper(),
		)

		summary, err := importer.Import(context.Background(), args[0])
		if err != nil {
			log.Fatalf("import failed: %v", err)
		}
		fmt.Printf("Imported %d users, %d assets, %d agreements, %d bills (%d rows skipped)\n",
			summary.Users, summary.Assets, summary.Agreements, summary.Bills, summary.Skipped)
	},
}

var workbookExportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export the asset register to an xlsx workbook",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db := openWorkbookORM()
		exporter := workbook.NewExporter(assetpg.NewAssetRepository(db), logger.LoggerWrapper())

		count, err := exporter.Export(context.Background(), scope.Everything(), args[0])
		if err != nil {
			log.Fatalf("export failed: %v", err)
		}
		fmt.Printf("Exported %d assets to %s\n", count, args[0])
	},
}

func openWorkbookORM() *gorm.DB {
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sqlDB, err := initDB(cfg.Database)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}
	db, err := initORM(sqlDB)
	if err != nil {
		log.Fatalf("failed to init orm: %v", err)
	}
	return db
}

func init() {
	workbookCmd.AddCommand(workbookImportCmd)
	workbookCmd.AddCommand(workbookExportCmd)
}
