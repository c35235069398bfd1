package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/openmagecz/roivenue-export/pkg/logger"
	"github.com/spf13/viper"
)

func MustInit() {
	if err := godotenv.Load("./.env"); err != nil {
		panic("error while loading .env file: " + err.Error())
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/roivenue-export")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}
	SetupLogger()
}

func SetupLogger() {
	handler := logger.NewHandler(nil)
	log := slog.New(handler)
	slog.SetDefault(log)
}

// Export carries every deployment constant the pipeline needs. It is built
// once at startup and handed to the services at construction time instead of
// the services reading globals inside the mapping loop.
type Export struct {
	StoreID         int64
	CurrencyCode    string
	PropertyCode    string
	WebsiteDomain   string
	PlatformVersion string
	LookbackWeeks   int
	Location        *time.Location
	ExportDirectory string
	SecretKeyPath   string
	UploadTimeout   time.Duration
	StorageAccount  string
	StorageShare    string
	StorageFolder   string
}

// MustLoadExport reads the export configuration from viper and the
// environment. Storage credentials come from the environment only.
func MustLoadExport() Export {
	loc, err := time.LoadLocation(viper.GetString("export.timezone"))
	if err != nil {
		panic("error while loading export timezone: " + err.Error())
	}

	lookback := viper.GetInt("export.lookback_weeks")
	if lookback == 0 {
		lookback = 13
	}

	uploadTimeout := viper.GetInt("export.upload_timeout_seconds")
	if uploadTimeout == 0 {
		uploadTimeout = 60
	}

	return Export{
		StoreID:         viper.GetInt64("export.store_id"),
		CurrencyCode:    viper.GetString("export.currency_code"),
		PropertyCode:    viper.GetString("export.property_code"),
		WebsiteDomain:   viper.GetString("export.website_domain"),
		PlatformVersion: viper.GetString("export.platform_version"),
		LookbackWeeks:   lookback,
		Location:        loc,
		ExportDirectory: viper.GetString("export.directory"),
		SecretKeyPath:   viper.GetString("export.secret_key_path"),
		UploadTimeout:   time.Duration(uploadTimeout) * time.Second,
		StorageAccount:  os.Getenv("AZURE_ACCOUNT_NAME"),
		StorageShare:    viper.GetString("azure.share_name"),
		StorageFolder:   viper.GetString("azure.share_folder"),
	}
}
