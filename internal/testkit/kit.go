// Package testkit provides shared fixtures for exercising the import
// pipeline without a database or network: canned spreadsheet data, xlsx and
// CSV encoders, and in-memory port implementations.
package testkit

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"oohdesk/domain/core"
	"oohdesk/domain/geo"
	"oohdesk/domain/importer"
	"oohdesk/ports"
)

// SampleHeaders mirrors a typical exhibitor spreadsheet layout.
func SampleHeaders() []string {
	return []string{"Código", "Endereço", "Latitude", "Longitude", "Medidas", "Fluxo"}
}

// SampleRows returns clean rows matching SampleHeaders.
func SampleRows() [][]string {
	return [][]string{
		{"OOH-001", "Av. Paulista, 1000", "-23.5613", "-46.6558", "9x3 m", "12.500 pessoas"},
		{"OOH-002", "Rua Augusta, 500", "-23.5548", "-46.6621", "4x3", "8.000"},
		{"OOH-003", "Av. Faria Lima, 200", "-23.5861", "-46.6815", "12x4", "30.000"},
	}
}

// BuildXLSX encodes headers and rows as a real xlsx workbook.
func BuildXLSX(headers []string, rows [][]string) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for r, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	var buf bytes.Buffer
	_ = f.Write(&buf)
	return buf.Bytes()
}

// BuildCSV encodes headers and rows as a semicolon-separated CSV, the
// delimiter Brazilian Excel exports use.
func BuildCSV(headers []string, rows [][]string) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(headers, ";"))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(strings.Join(row, ";"))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// ReadySession builds a session with sample data loaded, auto-mapped, and
// ready to commit.
func ReadySession() *importer.Session {
	s := importer.NewSession(1, "Exibidora Teste")
	if err := s.SetData(SampleHeaders(), SampleRows()); err != nil {
		panic(err)
	}
	if err := s.ApplyMapping(importer.SuggestMapping(s.Headers)); err != nil {
		panic(err)
	}
	return s
}

// FakeInventory is an in-memory ports.InventoryRepository. Existing
// simulates codes already present in the catalog; FailInsert forces the
// batch to roll back.
type FakeInventory struct {
	mu         sync.Mutex
	Existing   map[string]bool
	FailInsert bool
	Inserted   [][]importer.ImportRow
	nextID     int64
}

func NewFakeInventory() *FakeInventory {
	return &FakeInventory{Existing: make(map[string]bool)}
}

func (f *FakeInventory) BatchInsert(ctx context.Context, exhibitorID core.ExhibitorID, rows []importer.ImportRow) ([]core.PointID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailInsert {
		return nil, fmt.Errorf("insert rejected")
	}
	ids := make([]core.PointID, len(rows))
	for i := range rows {
		f.nextID++
		ids[i] = core.PointID(f.nextID)
		f.Existing[rows[i].Code] = true
	}
	f.Inserted = append(f.Inserted, rows)
	return ids, nil
}

func (f *FakeInventory) ExistingCodes(ctx context.Context, codes []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range codes {
		if f.Existing[c] {
			out = append(out, c)
		}
	}
	return out, nil
}

// FakeImageStore records attach calls; FailFor forces failures per point.
type FakeImageStore struct {
	mu       sync.Mutex
	Attached map[core.PointID]int
	FailFor  map[core.PointID]bool
}

func NewFakeImageStore() *FakeImageStore {
	return &FakeImageStore{
		Attached: make(map[core.PointID]int),
		FailFor:  make(map[core.PointID]bool),
	}
}

func (f *FakeImageStore) AttachImage(ctx context.Context, pointID core.PointID, image ports.PointImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailFor[pointID] {
		return fmt.Errorf("storage unavailable")
	}
	f.Attached[pointID]++
	return nil
}

// FakeLayers is an in-memory ports.LayerRepository.
type FakeLayers struct {
	mu       sync.Mutex
	Layers   map[core.LayerID]*geo.Layer
	Replaces int
}

func NewFakeLayers() *FakeLayers {
	return &FakeLayers{Layers: make(map[core.LayerID]*geo.Layer)}
}

func (f *FakeLayers) AddLayer(id core.LayerID, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Layers[id] = &geo.Layer{ID: id, Name: name, Visible: true, CreatedAt: core.Now()}
}

func (f *FakeLayers) DeleteLayer(id core.LayerID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Layers, id)
}

func (f *FakeLayers) GetLayer(ctx context.Context, id core.LayerID) (*geo.Layer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	layer, ok := f.Layers[id]
	if !ok {
		return nil, fmt.Errorf("layer %s not found", id)
	}
	copied := *layer
	copied.Markers = append([]geo.Marker(nil), layer.Markers...)
	return &copied, nil
}

func (f *FakeLayers) LayerExists(ctx context.Context, id core.LayerID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Layers[id]
	return ok, nil
}

func (f *FakeLayers) ReplaceMarkers(ctx context.Context, id core.LayerID, markers []geo.Marker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	layer, ok := f.Layers[id]
	if !ok {
		return fmt.Errorf("layer %s not found", id)
	}
	layer.Markers = append([]geo.Marker(nil), markers...)
	f.Replaces++
	return nil
}

// Markers returns the current marker list for a layer.
func (f *FakeLayers) Markers(id core.LayerID) []geo.Marker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if layer, ok := f.Layers[id]; ok {
		return append([]geo.Marker(nil), layer.Markers...)
	}
	return nil
}

// ScriptedGeocoder replays a per-address script of results and errors. Each
// call pops the next response for that address; the last response repeats.
type ScriptedGeocoder struct {
	mu      sync.Mutex
	Scripts map[string][]ScriptedResponse
	Calls   []string
}

type ScriptedResponse struct {
	Result *geo.GeocodeResult
	Err    error
}

func NewScriptedGeocoder() *ScriptedGeocoder {
	return &ScriptedGeocoder{Scripts: make(map[string][]ScriptedResponse)}
}

func (g *ScriptedGeocoder) Script(address string, responses ...ScriptedResponse) {
	g.Scripts[address] = responses
}

func (g *ScriptedGeocoder) Geocode(ctx context.Context, address string) (*geo.GeocodeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls = append(g.Calls, address)

	script, ok := g.Scripts[address]
	if !ok || len(script) == 0 {
		return nil, ports.ErrNoMatch
	}
	next := script[0]
	if len(script) > 1 {
		g.Scripts[address] = script[1:]
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return next.Result, nil
}
