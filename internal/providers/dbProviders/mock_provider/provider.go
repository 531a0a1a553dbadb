package mock_provider

import (
	"errors"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/open-ingest/eventgate/internal/model"
)

const CDbName = "eventgate"

var pLog = log.New(os.Stdout, "MOCK_MONGO:  ", log.Ldate|log.Ltime)

// MockDbProvider provides an in-memory implementation of DbProviderInterface.
// Records are held in insertion order so the scan's continuation tokens behave
// like the Mongo provider's object-id ordering.
type MockDbProvider struct {
	DbUrl  string
	DbName string
	dbInit bool
	mu     sync.RWMutex

	records    []model.IngestRecord
	parameters map[string]string

	// Injectable failures for tests. When set, the corresponding operation
	// returns the error without touching storage.
	FailPutRecord   error
	FailScanRecords error
}

// Open returns an initialized in-memory provider. The URL is accepted for
// interface symmetry with the Mongo provider and is not interpreted beyond its
// "mockdb:" prefix.
func Open(dbUrl string, dbName string) (*MockDbProvider, error) {
	if dbName == "" {
		dbName = CDbName
	}
	m := MockDbProvider{
		DbUrl:  dbUrl,
		DbName: dbName,
	}
	m.initialize()
	return &m, nil
}

func (m *MockDbProvider) initialize() {
	m.mu.Lock()
	defer m.mu.Unlock()

	pLog.Println("Initializing new in-memory mock database [" + m.DbName + "]")
	m.records = nil
	m.parameters = map[string]string{}
	m.dbInit = true
}

func (m *MockDbProvider) Name() string {
	return m.DbName
}

func (m *MockDbProvider) Check() error {
	// Mock provider is always available
	return nil
}

func (m *MockDbProvider) Close() error {
	return nil
}

func (m *MockDbProvider) ResetDb(initialize bool) error {
	m.mu.Lock()
	m.records = nil
	m.parameters = map[string]string{}
	m.dbInit = false
	m.mu.Unlock()

	if initialize {
		m.initialize()
	}
	return nil
}

func (m *MockDbProvider) PutRecord(record *model.IngestRecord) error {
	if m.FailPutRecord != nil {
		return m.FailPutRecord
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dbInit {
		return errors.New("mock provider not initialized")
	}
	m.records = append(m.records, *record)
	return nil
}

// ScanRecords pages over stored records in insertion order. The continuation
// token is the index of the next unread record.
func (m *MockDbProvider) ScanRecords(window model.ScanWindow, pageToken string, limit int32) (*model.RecordPage, error) {
	if m.FailScanRecords != nil {
		return nil, m.FailScanRecords
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	start := 0
	if pageToken != "" {
		offset, err := strconv.Atoi(pageToken)
		if err != nil || offset < 0 {
			return nil, errors.New("invalid continuation token: " + pageToken)
		}
		start = offset
	}

	var page model.RecordPage
	scanned := 0
	i := start
	for ; i < len(m.records) && scanned < int(limit); i++ {
		scanned++
		if window.Contains(m.records[i].Timestamp) {
			page.Records = append(page.Records, m.records[i])
		}
	}
	if i < len(m.records) {
		page.NextToken = strconv.Itoa(i)
	}
	return &page, nil
}

func (m *MockDbProvider) CountRecords() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

func (m *MockDbProvider) GetSecret(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.parameters[name]
	if !ok {
		return "", errors.New("parameter not found: " + name)
	}
	return value, nil
}

func (m *MockDbProvider) SetSecret(name string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parameters[name] = value
	return nil
}
