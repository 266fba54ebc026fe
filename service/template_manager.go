package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"wavewall-mockups/models"
	"wavewall-mockups/utils"
)

const (
	libraryFileName  = "library.json"
	metadataFileName = "metadata.json"
	libraryVersion   = "1.0"
)

// TemplateManager owns the mockup template library: a library.json index
// at the root of the templates tree, rebuilt by scanning per-template
// subdirectories when the index is missing or corrupt. It is the sole
// mutator of the library; templates are read-only during generation.
type TemplateManager struct {
	rootDir string

	mu      sync.RWMutex
	library *models.TemplateLibrary
}

// NewTemplateManager creates a manager rooted at the templates directory.
func NewTemplateManager(rootDir string) *TemplateManager {
	return &TemplateManager{rootDir: rootDir}
}

// RootDir returns the templates root, used by generators to resolve the
// library's relative asset paths.
func (m *TemplateManager) RootDir() string {
	return m.rootDir
}

// LoadLibrary returns the in-memory library, loading it on first use.
// With forceReload it re-reads the persisted index; if the index is absent
// or unreadable it falls back to a directory scan and re-persists the
// reconstructed result. The returned pointer is replaced wholesale on
// reload so concurrent readers never observe a half-updated slice.
func (m *TemplateManager) LoadLibrary(forceReload bool) (*models.TemplateLibrary, error) {
	m.mu.RLock()
	lib := m.library
	m.mu.RUnlock()
	if lib != nil && !forceReload {
		return lib, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.library != nil && !forceReload {
		return m.library, nil
	}

	lib, err := m.readIndex()
	if err != nil {
		logrus.WithError(err).WithField("dir", m.rootDir).Warn("Library index unavailable, scanning template directories")
		lib = m.scanTemplates()
		if err := m.persist(lib); err != nil {
			logrus.WithError(err).Warn("Failed to persist reconstructed library index")
		}
	}

	m.library = lib
	logrus.WithField("templates", len(lib.Templates)).Info("Template library loaded")
	return lib, nil
}

// Rescan rebuilds the library from the template directories, ignoring
// any persisted index, and writes the reconstructed result back to
// library.json. Use it when templates were added or edited on disk
// behind the manager's back.
func (m *TemplateManager) Rescan() (*models.TemplateLibrary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lib := m.scanTemplates()
	if err := m.persist(lib); err != nil {
		return nil, err
	}
	m.library = lib
	logrus.WithField("templates", len(lib.Templates)).Info("Template library rescanned")
	return lib, nil
}

// GetTemplate returns the template with the given id, or nil if absent.
// Absence is not an error; callers decide whether it is fatal.
func (m *TemplateManager) GetTemplate(id string) *models.MockupTemplate {
	lib, err := m.LoadLibrary(false)
	if err != nil {
		return nil
	}
	for i := range lib.Templates {
		if lib.Templates[i].ID == id {
			t := lib.Templates[i]
			return &t
		}
	}
	return nil
}

// FindTemplates returns all templates matching the criteria. Omitted
// criteria match everything; set criteria are AND-combined.
func (m *TemplateManager) FindTemplates(criteria models.TemplateCriteria) []models.MockupTemplate {
	lib, err := m.LoadLibrary(false)
	if err != nil {
		return nil
	}
	var matched []models.MockupTemplate
	for i := range lib.Templates {
		if criteria.Matches(&lib.Templates[i]) {
			matched = append(matched, lib.Templates[i])
		}
	}
	return matched
}

// AddTemplate upserts a template by id, bumps the library timestamp, and
// persists the index immediately.
func (m *TemplateManager) AddTemplate(t models.MockupTemplate) error {
	if t.ID == "" {
		return fmt.Errorf("template id is required")
	}
	if !t.PrintArea.Valid() {
		return fmt.Errorf("template %s has an empty print area", t.ID)
	}

	if _, err := m.LoadLibrary(false); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := cloneLibrary(m.library)
	replaced := false
	for i := range next.Templates {
		if next.Templates[i].ID == t.ID {
			next.Templates[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		next.Templates = append(next.Templates, t)
	}
	next.LastUpdated = time.Now().UTC()

	if err := m.persist(next); err != nil {
		return err
	}
	m.library = next
	logrus.WithFields(logrus.Fields{"template_id": t.ID, "replaced": replaced}).Info("Template registered")
	return nil
}

// RemoveTemplate removes a template by id, reporting whether anything was
// removed. The index is persisted only when a removal happened.
func (m *TemplateManager) RemoveTemplate(id string) (bool, error) {
	if _, err := m.LoadLibrary(false); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := cloneLibrary(m.library)
	kept := next.Templates[:0]
	removed := false
	for _, t := range next.Templates {
		if t.ID == id {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if !removed {
		return false, nil
	}

	next.Templates = kept
	next.LastUpdated = time.Now().UTC()
	if err := m.persist(next); err != nil {
		return false, err
	}
	m.library = next
	logrus.WithField("template_id", id).Info("Template removed")
	return true, nil
}

// GetStats aggregates template counts by product type, angle and color.
func (m *TemplateManager) GetStats() models.LibraryStats {
	stats := models.LibraryStats{
		ByProductType: make(map[models.ProductType]int),
		ByAngle:       make(map[models.Angle]int),
		ByColor:       make(map[string]int),
	}

	lib, err := m.LoadLibrary(false)
	if err != nil {
		return stats
	}
	stats.Total = len(lib.Templates)
	for i := range lib.Templates {
		t := &lib.Templates[i]
		stats.ByProductType[t.ProductType]++
		stats.ByAngle[t.Angle]++
		if t.Color != "" {
			stats.ByColor[t.Color]++
		}
	}
	return stats
}

// readIndex reads and validates the persisted library.json.
func (m *TemplateManager) readIndex() (*models.TemplateLibrary, error) {
	data, err := os.ReadFile(filepath.Join(m.rootDir, libraryFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read library index: %w", err)
	}
	var lib models.TemplateLibrary
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse library index: %w", err)
	}
	return &lib, nil
}

// scanTemplates walks the per-template subdirectories and rebuilds the
// library from each metadata.json. Invalid or incomplete template folders
// are skipped with a warning; scan errors reduce the discovered set, they
// never abort the whole load.
func (m *TemplateManager) scanTemplates() *models.TemplateLibrary {
	lib := &models.TemplateLibrary{
		Version:     libraryVersion,
		LastUpdated: time.Now().UTC(),
	}

	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		logrus.WithError(err).WithField("dir", m.rootDir).Warn("Failed to read templates directory")
		return lib
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		t, err := m.readTemplateDir(e.Name())
		if err != nil {
			logrus.WithError(err).WithField("template_dir", e.Name()).Warn("Skipping invalid template directory")
			continue
		}
		lib.Templates = append(lib.Templates, *t)
	}

	logrus.WithField("discovered", len(lib.Templates)).Info("Template directory scan completed")
	return lib
}

// readTemplateDir loads one template folder's metadata.json, validates its
// required assets, and qualifies asset paths relative to the templates
// root ("<id>/base.png").
func (m *TemplateManager) readTemplateDir(dir string) (*models.MockupTemplate, error) {
	raw, err := os.ReadFile(filepath.Join(m.rootDir, dir, metadataFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var t models.MockupTemplate
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	if t.ID == "" {
		t.ID = dir
	}
	if t.Name == "" {
		t.Name = t.ID
	}
	if !t.PrintArea.Valid() {
		return nil, fmt.Errorf("metadata declares an empty print area")
	}

	// Backfill criteria fields from the id naming convention when the
	// metadata leaves them empty.
	if t.ProductType == "" || t.Angle == "" {
		if c, err := utils.ParseTemplateID(t.ID); err == nil {
			if t.ProductType == "" {
				t.ProductType = c.ProductType
			}
			if t.Angle == "" {
				t.Angle = c.Angle
			}
			if t.Color == "" {
				t.Color = c.Color
			}
		}
	}

	if t.BasePath == "" {
		return nil, fmt.Errorf("metadata is missing basePath")
	}
	t.BasePath = filepath.Join(dir, t.BasePath)
	if _, err := os.Stat(filepath.Join(m.rootDir, t.BasePath)); err != nil {
		return nil, fmt.Errorf("base image %s is missing: %w", t.BasePath, err)
	}

	t.DisplacementPath = m.qualifyOptional(dir, t.ID, "displacement", t.DisplacementPath)
	t.MaskPath = m.qualifyOptional(dir, t.ID, "mask", t.MaskPath)
	t.ShadowPath = m.qualifyOptional(dir, t.ID, "shadow", t.ShadowPath)
	t.HighlightPath = m.qualifyOptional(dir, t.ID, "highlight", t.HighlightPath)

	return &t, nil
}

// qualifyOptional joins an optional asset path onto the template directory
// and drops it with a warning when the file does not exist. A missing
// optional asset degrades the corresponding compositing step, it is never
// fatal.
func (m *TemplateManager) qualifyOptional(dir, id, kind, rel string) string {
	if rel == "" {
		return ""
	}
	qualified := filepath.Join(dir, rel)
	if _, err := os.Stat(filepath.Join(m.rootDir, qualified)); err != nil {
		logrus.WithFields(logrus.Fields{"template_id": id, "asset": kind, "path": rel}).Warn("Optional template asset missing, dropping reference")
		return ""
	}
	return qualified
}

// persist writes the library index to library.json.
func (m *TemplateManager) persist(lib *models.TemplateLibrary) error {
	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize library index: %w", err)
	}
	if err := os.MkdirAll(m.rootDir, 0755); err != nil {
		return fmt.Errorf("failed to create templates directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.rootDir, libraryFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write library index: %w", err)
	}
	return nil
}

func cloneLibrary(lib *models.TemplateLibrary) *models.TemplateLibrary {
	next := &models.TemplateLibrary{
		Version:     lib.Version,
		LastUpdated: lib.LastUpdated,
		Templates:   make([]models.MockupTemplate, len(lib.Templates)),
	}
	if next.Version == "" {
		next.Version = libraryVersion
	}
	copy(next.Templates, lib.Templates)
	return next
}
