package config

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"club-membership/internal/adapters/persistence/models"
	"club-membership/internal/core/domain"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

const seedDateLayout = "2006-01-02"

// MasterSeed is the YAML document describing semesters and organization rule sets
type MasterSeed struct {
	Semesters     []SemesterSeed     `yaml:"semesters"`
	Organizations []OrganizationSeed `yaml:"organizations"`
}

// SemesterSeed describes one semester
type SemesterSeed struct {
	TermCode  string `yaml:"term_code"`
	Name      string `yaml:"name"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
}

// OrganizationSeed describes one organization and its per-semester rules
type OrganizationSeed struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Officers    []string      `yaml:"officers"` // usernames of officer accounts scoped to the organization
	RuleSets    []RuleSetSeed `yaml:"rule_sets"`
}

// RuleSetSeed is the rule configuration of an organization for one semester
type RuleSetSeed struct {
	TermCode    string          `yaml:"term_code"`
	Requirement RequirementSeed `yaml:"requirement"`
	EventTypes  []EventTypeSeed `yaml:"event_types"`
}

// RequirementSeed describes the active requirement
type RequirementSeed struct {
	Value float64 `yaml:"value"`
	Mode  string  `yaml:"mode"`
}

// EventTypeSeed describes one event type
type EventTypeSeed struct {
	Name            string     `yaml:"name"`
	RuleType        string     `yaml:"rule_type"`
	OccurrenceTotal *int       `yaml:"occurrence_total"`
	MaxPoints       *float64   `yaml:"max_points"`
	Rules           []RuleSeed `yaml:"rules"`
}

// RuleSeed describes one rule
type RuleSeed struct {
	Criteria      string   `yaml:"criteria"`
	CriteriaValue *float64 `yaml:"criteria_value"`
	PointValue    float64  `yaml:"point_value"`
}

// ParseMasterSeedYAML decodes and validates a seed document
func ParseMasterSeedYAML(data []byte) (*MasterSeed, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("seed: document is empty")
	}

	var seed MasterSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// LoadMasterSeedFile reads and parses a seed file
func LoadMasterSeedFile(path string) (*MasterSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	seed, err := ParseMasterSeedYAML(data)
	if err != nil {
		return nil, fmt.Errorf("seed: %s: %w", path, err)
	}
	return seed, nil
}

// Validate checks dates, enums and term code references
func (m *MasterSeed) Validate() error {
	terms := make(map[string]bool, len(m.Semesters))
	for _, s := range m.Semesters {
		if strings.TrimSpace(s.TermCode) == "" {
			return errors.New("seed: semester term_code is required")
		}
		if terms[s.TermCode] {
			return fmt.Errorf("seed: duplicate semester %q", s.TermCode)
		}
		terms[s.TermCode] = true

		start, err := time.Parse(seedDateLayout, s.StartDate)
		if err != nil {
			return fmt.Errorf("seed: semester %s start_date: %w", s.TermCode, err)
		}
		end, err := time.Parse(seedDateLayout, s.EndDate)
		if err != nil {
			return fmt.Errorf("seed: semester %s end_date: %w", s.TermCode, err)
		}
		if !end.After(start) {
			return fmt.Errorf("seed: semester %s ends before it starts", s.TermCode)
		}
	}

	for _, org := range m.Organizations {
		if strings.TrimSpace(org.Name) == "" {
			return errors.New("seed: organization name is required")
		}
		for _, username := range org.Officers {
			if strings.TrimSpace(username) == "" {
				return fmt.Errorf("seed: %s lists a blank officer username", org.Name)
			}
		}
		for _, rs := range org.RuleSets {
			if !terms[rs.TermCode] {
				return fmt.Errorf("seed: %s references unknown semester %q", org.Name, rs.TermCode)
			}
			mode := domain.RequirementMode(rs.Requirement.Mode)
			if mode != domain.RequirementPoints && mode != domain.RequirementCriteria {
				return fmt.Errorf("seed: %s/%s: unknown requirement mode %q", org.Name, rs.TermCode, rs.Requirement.Mode)
			}
			for _, et := range rs.EventTypes {
				rt := domain.RuleType(et.RuleType)
				if rt != domain.RuleTypePoints && rt != domain.RuleTypeCriteria {
					return fmt.Errorf("seed: event type %q: unknown rule_type %q", et.Name, et.RuleType)
				}
				for _, r := range et.Rules {
					switch domain.RuleCriteria(r.Criteria) {
					case domain.CriteriaAttendance, domain.CriteriaOneOff,
						domain.CriteriaMinimumPercentage, domain.CriteriaMinimumHours:
					default:
						return fmt.Errorf("seed: event type %q: unknown criteria %q", et.Name, r.Criteria)
					}
				}
			}
		}
	}
	return nil
}

// SeedMasterData writes semesters and organization rule sets; existing rows are kept
func SeedMasterData(db *gorm.DB, seed *MasterSeed) error {
	return db.Transaction(func(tx *gorm.DB) error {
		semesters := make(map[string]uint, len(seed.Semesters))
		for _, s := range seed.Semesters {
			id, err := seedSemester(tx, s)
			if err != nil {
				return err
			}
			semesters[s.TermCode] = id
		}

		for _, org := range seed.Organizations {
			if err := seedOrganization(tx, org, semesters); err != nil {
				return err
			}
		}

		log.Println("✅ Master data seeded successfully")
		return nil
	})
}

func seedSemester(tx *gorm.DB, s SemesterSeed) (uint, error) {
	start, _ := time.Parse(seedDateLayout, s.StartDate)
	end, _ := time.Parse(seedDateLayout, s.EndDate)

	semester := models.Semester{
		TermCode:  s.TermCode,
		Name:      s.Name,
		StartDate: start,
		EndDate:   end,
	}
	result := tx.Where("term_code = ?", s.TermCode).FirstOrCreate(&semester)
	if result.Error != nil {
		return 0, fmt.Errorf("seed semester %s: %w", s.TermCode, result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("   Created semester: %s", s.TermCode)
	}
	return semester.ID, nil
}

func seedOrganization(tx *gorm.DB, o OrganizationSeed, semesters map[string]uint) error {
	org := models.Organization{Name: o.Name, Description: o.Description}
	result := tx.Where("name = ?", o.Name).FirstOrCreate(&org)
	if result.Error != nil {
		return fmt.Errorf("seed organization %s: %w", o.Name, result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("   Created organization: %s", o.Name)
	}

	for _, rs := range o.RuleSets {
		semesterID := semesters[rs.TermCode]

		req := models.ActiveRequirement{
			OrganizationID:    org.ID,
			SemesterID:        semesterID,
			ActiveRequirement: rs.Requirement.Value,
			Description:       rs.Requirement.Mode,
		}
		err := tx.Where("organization_id = ? AND semester_id = ?", org.ID, semesterID).
			FirstOrCreate(&req).Error
		if err != nil {
			return fmt.Errorf("seed requirement %s/%s: %w", o.Name, rs.TermCode, err)
		}

		for _, et := range rs.EventTypes {
			var existing models.EventType
			err := tx.Where("organization_id = ? AND semester_id = ? AND name = ?", org.ID, semesterID, et.Name).
				First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			eventType := models.EventType{
				OrganizationID:  org.ID,
				SemesterID:      semesterID,
				Name:            et.Name,
				RuleType:        et.RuleType,
				OccurrenceTotal: et.OccurrenceTotal,
				MaxPoints:       et.MaxPoints,
			}
			for _, r := range et.Rules {
				eventType.Rules = append(eventType.Rules, models.Rule{
					Criteria:      r.Criteria,
					CriteriaValue: r.CriteriaValue,
					PointValue:    r.PointValue,
				})
			}
			if err := tx.Create(&eventType).Error; err != nil {
				return fmt.Errorf("seed event type %s: %w", et.Name, err)
			}
			log.Printf("   Created event_type: %s (%s, %d rules)", et.Name, rs.TermCode, len(et.Rules))
		}
	}
	return nil
}
