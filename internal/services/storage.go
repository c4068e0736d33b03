package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"sitelens/internal/common"
	"sitelens/internal/interfaces"
	"sitelens/internal/models"

	bolt "go.etcd.io/bbolt"
)

const (
	corporaBucket  = "corpora"
	pagesBucket    = "pages"
	metadataBucket = "metadata"
)

// storage is the bbolt-backed corpus repository. Crawl corpora are
// persisted whole under a normalized site key, and individual pages are
// indexed by exact URL for archived rendering lookups.
type storage struct {
	db     *bolt.DB
	config *common.StorageConfig
}

func NewStorage(config *common.StorageConfig) (interfaces.Storage, error) {
	dbDir := filepath.Dir(config.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(config.DatabasePath, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{corporaBucket, pagesBucket, metadataBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &storage{
		db:     db,
		config: config,
	}, nil
}

func (s *storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// NormalizeSiteKey reduces a site identifier (domain or URL) to the form
// corpora are stored under: scheme and trailing slash stripped, dots
// replaced with underscores.
func NormalizeSiteKey(identifier string) string {
	key := strings.TrimPrefix(identifier, "https://")
	key = strings.TrimPrefix(key, "http://")
	key = strings.TrimSuffix(key, "/")
	return strings.ReplaceAll(key, ".", "_")
}

// SaveCorpus stores a corpus under the given site key and indexes its
// pages by URL. Within one corpus the first occurrence of a URL wins.
func (s *storage) SaveCorpus(site string, corpus *models.CrawlCorpus) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(corpus)
		if err != nil {
			return fmt.Errorf("failed to marshal corpus %s: %w", site, err)
		}
		if err := tx.Bucket([]byte(corporaBucket)).Put([]byte(site), data); err != nil {
			return fmt.Errorf("failed to save corpus %s: %w", site, err)
		}

		pages := tx.Bucket([]byte(pagesBucket))
		seen := make(map[string]bool)
		for _, page := range corpus.Pages {
			if page.URL == "" || seen[page.URL] {
				continue
			}
			seen[page.URL] = true

			pageData, err := json.Marshal(page)
			if err != nil {
				return fmt.Errorf("failed to marshal page %s: %w", page.URL, err)
			}
			if err := pages.Put([]byte(page.URL), pageData); err != nil {
				return fmt.Errorf("failed to index page %s: %w", page.URL, err)
			}
		}

		meta := tx.Bucket([]byte(metadataBucket))
		return meta.Put([]byte(site), []byte(time.Now().Format(time.RFC3339)))
	})
}

// FindCorpus resolves a site identifier to a stored corpus. An empty
// identifier matches the first stored corpus; otherwise the normalized
// identifier is matched by containment against stored site keys.
// Returns a not-found error when nothing matches.
func (s *storage) FindCorpus(siteIdentifier string) (*models.CrawlCorpus, error) {
	normalized := NormalizeSiteKey(siteIdentifier)

	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(corporaBucket)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if normalized == "" || strings.Contains(string(k), normalized) {
				raw = append([]byte(nil), v...)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, common.NewStorageError("corpus_read_failed", "Failed reading crawl data").WithCause(err)
	}
	if raw == nil {
		return nil, common.NewNotFoundError("corpus_not_found", "No crawl data found")
	}

	var corpus models.CrawlCorpus
	if err := json.Unmarshal(raw, &corpus); err != nil {
		return nil, common.NewStorageError("corpus_parse_failed", "Failed to parse crawl data").WithCause(err)
	}
	return &corpus, nil
}

// FindPage looks up one crawled page by exact URL
func (s *storage) FindPage(pageURL string) (*models.RawPage, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(pagesBucket)).Get([]byte(pageURL)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, common.NewStorageError("page_read_failed", "Failed reading crawl data").WithCause(err)
	}
	if raw == nil {
		return nil, common.NewNotFoundError("page_not_found", "Page not found in crawl data")
	}

	var page models.RawPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, common.NewStorageError("page_parse_failed", "Failed to parse crawl data").WithCause(err)
	}
	return &page, nil
}

// ImportDirectory scans dir for crawl_*.json corpus files and stores
// each one. A malformed file aborts the import with an error naming it;
// already-imported corpora remain stored.
func (s *storage) ImportDirectory(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, common.NewStorageError("corpus_dir_unreadable", "Failed to read corpus directory").WithCause(err)
	}

	imported := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "crawl_") || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return imported, common.NewStorageError("corpus_file_unreadable", fmt.Sprintf("Failed to read %s", name)).WithCause(err)
		}

		var corpus models.CrawlCorpus
		if err := json.Unmarshal(data, &corpus); err != nil {
			return imported, common.NewStorageError("corpus_parse_failed", fmt.Sprintf("Failed to parse %s", name)).WithCause(err)
		}

		site := NormalizeSiteKey(corpus.URLCrawled)
		if site == "" {
			site = strings.TrimSuffix(strings.TrimPrefix(name, "crawl_"), ".json")
		}

		if err := s.SaveCorpus(site, &corpus); err != nil {
			return imported, common.NewStorageError("corpus_save_failed", fmt.Sprintf("Failed to store %s", name)).WithCause(err)
		}
		imported++
	}

	return imported, nil
}

// Corpora lists stored corpora for status reporting, sorted by site key
func (s *storage) Corpora() ([]models.CorpusInfo, error) {
	infos := make([]models.CorpusInfo, 0)

	err := s.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket([]byte(metadataBucket))
		c := tx.Bucket([]byte(corporaBucket)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var corpus models.CrawlCorpus
			if err := json.Unmarshal(v, &corpus); err != nil {
				continue
			}
			importedAt := ""
			if t := meta.Get(k); t != nil {
				importedAt = string(t)
			}
			infos = append(infos, models.CorpusInfo{
				Site:       string(k),
				URLCrawled: corpus.URLCrawled,
				PageCount:  len(corpus.Pages),
				ImportedAt: importedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Site < infos[j].Site })
	return infos, nil
}
