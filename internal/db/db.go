package db

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"go-swmon/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultSwitches seeds an empty inventory on first start.
var DefaultSwitches = []models.Switch{
	{Name: "SW-CORE-01", Host: "192.168.1.1", Location: "Server Room A", Model: "C9300-48P"},
	{Name: "SW-ACCESS-02", Host: "192.168.1.2", Location: "Floor 2", Model: "C9300-48P"},
	{Name: "SW-ACCESS-03", Host: "192.168.1.3", Location: "Floor 3", Model: "C9300-48T"},
	{Name: "SW-DIST-01", Host: "192.168.1.10", Location: "Comms Room B", Model: "C9300-48P"},
}

var ErrInvalidSwitch = errors.New("switch needs a host")

// Inventory is the set of switches the service may contact.
type Inventory struct {
	db *gorm.DB
}

func Open(path string) (*Inventory, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := gdb.AutoMigrate(&models.Switch{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	inv := &Inventory{db: gdb}
	if err := inv.seed(); err != nil {
		return nil, err
	}
	return inv, nil
}

func (inv *Inventory) seed() error {
	var count int64
	if err := inv.db.Model(&models.Switch{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count switches: %w", err)
	}
	if count > 0 {
		return nil
	}
	seed := make([]models.Switch, len(DefaultSwitches))
	copy(seed, DefaultSwitches)
	if err := inv.db.Create(&seed).Error; err != nil {
		return fmt.Errorf("seed switches: %w", err)
	}
	log.Printf("[db] seeded %d default switches", len(seed))
	return nil
}

// IsKnownDevice reports whether host is in the inventory. Lookup errors
// count as unknown so an unreadable inventory never opens access.
func (inv *Inventory) IsKnownDevice(host string) bool {
	_, ok := inv.Get(host)
	return ok
}

func (inv *Inventory) Get(host string) (models.Switch, bool) {
	var sw models.Switch
	err := inv.db.Where("host = ?", host).First(&sw).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[db] lookup %s: %v", host, err)
		}
		return models.Switch{}, false
	}
	return sw, true
}

func (inv *Inventory) List() ([]models.Switch, error) {
	var switches []models.Switch
	if err := inv.db.Order("id asc").Find(&switches).Error; err != nil {
		return nil, fmt.Errorf("list switches: %w", err)
	}
	return switches, nil
}

// Add inserts one switch. The host must be unique.
func (inv *Inventory) Add(sw models.Switch) error {
	sw.ID = 0
	sw.Host = strings.TrimSpace(sw.Host)
	if sw.Host == "" {
		return ErrInvalidSwitch
	}
	if err := inv.db.Create(&sw).Error; err != nil {
		return fmt.Errorf("add switch %s: %w", sw.Host, err)
	}
	return nil
}

// Delete removes the switch with the given host, if present.
func (inv *Inventory) Delete(host string) error {
	if err := inv.db.Where("host = ?", host).Delete(&models.Switch{}).Error; err != nil {
		return fmt.Errorf("delete switch %s: %w", host, err)
	}
	return nil
}

// Replace swaps the whole inventory in one transaction.
func (inv *Inventory) Replace(switches []models.Switch) error {
	rows := make([]models.Switch, 0, len(switches))
	for _, sw := range switches {
		sw.ID = 0
		sw.Host = strings.TrimSpace(sw.Host)
		if sw.Host == "" {
			return ErrInvalidSwitch
		}
		rows = append(rows, sw)
	}

	return inv.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Switch{}).Error; err != nil {
			return fmt.Errorf("clear inventory: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("write inventory: %w", err)
		}
		return nil
	})
}

func (inv *Inventory) Close() error {
	sqlDB, err := inv.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
