package database

import (
	"fmt"
	"os"

	"github.com/jinzhu/gorm"
	"gopkg.in/yaml.v3"

	"github.com/Ism1tha/odoo-mqtt-addon/internal/models"
)

// SeedFixture mirrors the YAML demo-data file shipped with the addon.
type SeedFixture struct {
	WorkCenters []struct {
		Name      string `yaml:"name"`
		MQTTTopic string `yaml:"mqtt_topic"`
		Robots    []struct {
			Identifier string `yaml:"identifier"`
			Name       string `yaml:"name"`
		} `yaml:"robots"`
	} `yaml:"work_centers"`
	Products []struct {
		Name           string  `yaml:"name"`
		MQTTType       string  `yaml:"mqtt_type"`
		MaterialBinary string  `yaml:"material_binary"`
		ResultProduct  string  `yaml:"result_product"`
		ResultQuantity float64 `yaml:"result_quantity"`
		OnHand         float64 `yaml:"on_hand"`
	} `yaml:"products"`
}

// Seed loads demo work centers, robots and products from a YAML fixture.
// It only runs against an empty database so restarting the server never
// duplicates configuration.
func Seed(db *gorm.DB, path string) error {
	var count int
	db.Model(&models.WorkCenter{}).Count(&count)
	if count > 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var fixture SeedFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	for _, wc := range fixture.WorkCenters {
		center := models.WorkCenter{
			Name:      wc.Name,
			MQTTTopic: wc.MQTTTopic,
			HasRobots: len(wc.Robots) > 0,
		}
		if err := db.Create(&center).Error; err != nil {
			return fmt.Errorf("failed to seed work center %q: %w", wc.Name, err)
		}
		for _, r := range wc.Robots {
			robot := models.Robot{Identifier: r.Identifier, Name: r.Name, WorkCenterID: center.ID}
			if err := db.Create(&robot).Error; err != nil {
				return fmt.Errorf("failed to seed robot %q: %w", r.Identifier, err)
			}
		}
	}

	// Products are created in two passes so result references can point at
	// products declared later in the file.
	created := make(map[string]*models.Product, len(fixture.Products))
	for _, p := range fixture.Products {
		product := models.Product{
			Name:           p.Name,
			MQTTType:       p.MQTTType,
			MaterialBinary: p.MaterialBinary,
			ResultQuantity: p.ResultQuantity,
		}
		if err := db.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
		created[p.Name] = &product
	}
	for _, p := range fixture.Products {
		if p.ResultProduct == "" {
			continue
		}
		result, ok := created[p.ResultProduct]
		if !ok {
			return fmt.Errorf("seed product %q references unknown result product %q", p.Name, p.ResultProduct)
		}
		product := created[p.Name]
		product.ResultProductID = &result.ID
		if err := db.Save(product).Error; err != nil {
			return fmt.Errorf("failed to link result product for %q: %w", p.Name, err)
		}
	}

	// Initial on-hand quantities land at the default stock location.
	var location models.StockLocation
	if err := db.Where("usage = ?", string(models.LocationUsageInternal)).First(&location).Error; err != nil {
		return fmt.Errorf("default stock location missing while seeding: %w", err)
	}
	for _, p := range fixture.Products {
		if p.OnHand == 0 {
			continue
		}
		quant := models.StockQuant{ProductID: created[p.Name].ID, LocationID: location.ID, Quantity: p.OnHand}
		if err := db.Create(&quant).Error; err != nil {
			return fmt.Errorf("failed to seed stock for %q: %w", p.Name, err)
		}
	}

	return nil
}
