// Package catalog holds the read-only learning content: real-world case
// studies, lesson-plan templates and the resource library.
package catalog

import (
	"go.uber.org/zap"

	"github.com/aieduca/biaslab/internal/datafile"
)

// Data file base names inside the data directory.
const (
	CasesFile     = "real_cases"
	PlansFile     = "lesson_plans"
	ResourcesFile = "resources"
)

// Catalog bundles all content.
type Catalog struct {
	Cases     []CaseStudy
	Plans     []LessonPlan
	Resources []Resource
}

// Load reads every content file from dataDir. Missing or invalid files are
// logged; cases and plans fall back to empty lists and resources fall back
// to the built-in library.
func Load(dataDir string, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{}

	if !loadFile(dataDir, CasesFile, caseSchema, &c.Cases, logger) {
		c.Cases = []CaseStudy{}
	}
	if !loadFile(dataDir, PlansFile, planSchema, &c.Plans, logger) {
		c.Plans = []LessonPlan{}
	}
	if !loadFile(dataDir, ResourcesFile, resourceSchema, &c.Resources, logger) {
		c.Resources = DefaultResources()
	}
	assignIDs(c)
	return c
}

func loadFile(dir, base string, schema datafile.Schema, out any, logger *zap.Logger) bool {
	path := datafile.Resolve(dir, base)
	if path == "" {
		logger.Warn("content file not found", zap.String("dir", dir), zap.String("file", base))
		return false
	}
	if err := datafile.Load(path, schema, out); err != nil {
		logger.Warn("failed to load content file", zap.String("path", path), zap.Error(err))
		return false
	}
	logger.Debug("loaded content file", zap.String("path", path))
	return true
}

// assignIDs gives entries without an explicit id a slug of their title.
func assignIDs(c *Catalog) {
	for i := range c.Cases {
		if c.Cases[i].ID == "" {
			c.Cases[i].ID = Slug(c.Cases[i].Title)
		}
	}
	for i := range c.Plans {
		if c.Plans[i].ID == "" {
			c.Plans[i].ID = Slug(c.Plans[i].Title)
		}
	}
	for i := range c.Resources {
		if c.Resources[i].ID == "" {
			c.Resources[i].ID = Slug(c.Resources[i].Title)
		}
	}
}
