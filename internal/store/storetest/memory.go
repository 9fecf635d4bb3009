// Package storetest provides an in-memory store.API implementation for
// exercising the services without Postgres. WithTx snapshots all state and
// restores it on error, and FailOn lets tests inject a fault into any
// single store method to prove rollback behavior.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"cafe-pos/internal/models"
	"cafe-pos/internal/store"
)

type Memory struct {
	mu sync.Mutex

	Tables     map[int64]*models.Table
	Categories map[int64]*models.Category
	Products   map[int64]*models.Product
	Lines      map[int64]*models.OrderLine
	Payments   []models.Payment
	Settings   map[string]string
	Users      []models.User

	// FailOn maps a method name to the error it should return.
	FailOn map[string]error

	nextID int64
	inTx   bool
	backup *snapshot
}

var _ store.API = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		Tables:     make(map[int64]*models.Table),
		Categories: make(map[int64]*models.Category),
		Products:   make(map[int64]*models.Product),
		Lines:      make(map[int64]*models.OrderLine),
		Settings:   make(map[string]string),
		FailOn:     make(map[string]error),
	}
}

func (m *Memory) fail(method string) error {
	return m.FailOn[method]
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

type snapshot struct {
	tables     map[int64]*models.Table
	categories map[int64]*models.Category
	products   map[int64]*models.Product
	lines      map[int64]*models.OrderLine
	payments   []models.Payment
	settings   map[string]string
	nextID     int64
}

func (m *Memory) snapshot() *snapshot {
	s := &snapshot{
		tables:     make(map[int64]*models.Table, len(m.Tables)),
		categories: make(map[int64]*models.Category, len(m.Categories)),
		products:   make(map[int64]*models.Product, len(m.Products)),
		lines:      make(map[int64]*models.OrderLine, len(m.Lines)),
		payments:   append([]models.Payment(nil), m.Payments...),
		settings:   make(map[string]string, len(m.Settings)),
		nextID:     m.nextID,
	}
	for id, t := range m.Tables {
		c := *t
		s.tables[id] = &c
	}
	for id, cat := range m.Categories {
		c := *cat
		s.categories[id] = &c
	}
	for id, p := range m.Products {
		c := *p
		s.products[id] = &c
	}
	for id, l := range m.Lines {
		c := *l
		s.lines[id] = &c
	}
	for k, v := range m.Settings {
		s.settings[k] = v
	}
	return s
}

func (m *Memory) restore(s *snapshot) {
	m.Tables = s.tables
	m.Categories = s.categories
	m.Products = s.products
	m.Lines = s.lines
	m.Payments = s.payments
	m.Settings = s.settings
	m.nextID = s.nextID
}

// WithTx snapshots everything and restores it if fn fails; nested calls
// join the outer scope like the real store.
func (m *Memory) WithTx(ctx context.Context, fn func(tx store.API) error) error {
	if err := m.fail("WithTx"); err != nil {
		return err
	}
	if m.inTx {
		return fn(m)
	}

	m.mu.Lock()
	m.backup = m.snapshot()
	m.inTx = true
	m.mu.Unlock()

	err := fn(m)

	m.mu.Lock()
	if err != nil {
		m.restore(m.backup)
	}
	m.backup = nil
	m.inTx = false
	m.mu.Unlock()
	return err
}

// --- tables ---

func (m *Memory) ListTables(ctx context.Context) ([]models.Table, error) {
	if err := m.fail("ListTables"); err != nil {
		return nil, err
	}
	tables := make([]models.Table, 0, len(m.Tables))
	for _, t := range m.Tables {
		tables = append(tables, *t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })
	return tables, nil
}

func (m *Memory) GetTable(ctx context.Context, id int64) (*models.Table, error) {
	if err := m.fail("GetTable"); err != nil {
		return nil, err
	}
	t, ok := m.Tables[id]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (m *Memory) InsertTable(ctx context.Context, name string) (*models.Table, error) {
	if err := m.fail("InsertTable"); err != nil {
		return nil, err
	}
	t := &models.Table{
		ID:        m.id(),
		Name:      name,
		Status:    models.TableStatusEmpty,
		CreatedAt: time.Now().UTC(),
	}
	m.Tables[t.ID] = t
	c := *t
	return &c, nil
}

func (m *Memory) RenameTable(ctx context.Context, id int64, name string) error {
	if err := m.fail("RenameTable"); err != nil {
		return err
	}
	if t, ok := m.Tables[id]; ok {
		t.Name = name
	}
	return nil
}

func (m *Memory) DeleteTable(ctx context.Context, id int64) error {
	if err := m.fail("DeleteTable"); err != nil {
		return err
	}
	delete(m.Tables, id)
	return nil
}

func (m *Memory) SetTableState(ctx context.Context, id int64, status string, total float64) error {
	if err := m.fail("SetTableState"); err != nil {
		return err
	}
	if t, ok := m.Tables[id]; ok {
		t.Status = status
		t.Total = total
	}
	return nil
}

// --- catalog ---

func (m *Memory) ListCategories(ctx context.Context) ([]models.Category, error) {
	if err := m.fail("ListCategories"); err != nil {
		return nil, err
	}
	categories := make([]models.Category, 0, len(m.Categories))
	for _, c := range m.Categories {
		categories = append(categories, *c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].ID < categories[j].ID
	})
	return categories, nil
}

func (m *Memory) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	if err := m.fail("GetCategory"); err != nil {
		return nil, err
	}
	c, ok := m.Categories[id]
	if !ok {
		return nil, nil
	}
	copy := *c
	return &copy, nil
}

func (m *Memory) InsertCategory(ctx context.Context, name, color string) (*models.Category, error) {
	if err := m.fail("InsertCategory"); err != nil {
		return nil, err
	}
	max := 0
	for _, c := range m.Categories {
		if c.SortOrder > max {
			max = c.SortOrder
		}
	}
	c := &models.Category{ID: m.id(), Name: name, Color: color, SortOrder: max + 1}
	m.Categories[c.ID] = c
	copy := *c
	return &copy, nil
}

func (m *Memory) UpdateCategory(ctx context.Context, id int64, name, color string) error {
	if err := m.fail("UpdateCategory"); err != nil {
		return err
	}
	if c, ok := m.Categories[id]; ok {
		c.Name, c.Color = name, color
	}
	return nil
}

func (m *Memory) DeleteCategory(ctx context.Context, id int64) error {
	if err := m.fail("DeleteCategory"); err != nil {
		return err
	}
	delete(m.Categories, id)
	return nil
}

func (m *Memory) SetCategorySortOrder(ctx context.Context, id int64, sortOrder int) error {
	if err := m.fail("SetCategorySortOrder"); err != nil {
		return err
	}
	if c, ok := m.Categories[id]; ok {
		c.SortOrder = sortOrder
	}
	return nil
}

func (m *Memory) ListProducts(ctx context.Context, categoryID int64) ([]models.ProductView, error) {
	if err := m.fail("ListProducts"); err != nil {
		return nil, err
	}
	var products []models.ProductView
	for _, p := range m.Products {
		if categoryID > 0 && p.CategoryID != categoryID {
			continue
		}
		view := models.ProductView{Product: *p}
		if c, ok := m.Categories[p.CategoryID]; ok {
			view.CategoryName, view.CategoryColor = c.Name, c.Color
		}
		products = append(products, view)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].SortOrder != products[j].SortOrder {
			return products[i].SortOrder < products[j].SortOrder
		}
		return products[i].ID < products[j].ID
	})
	return products, nil
}

func (m *Memory) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if err := m.fail("GetProduct"); err != nil {
		return nil, err
	}
	p, ok := m.Products[id]
	if !ok {
		return nil, nil
	}
	copy := *p
	return &copy, nil
}

func (m *Memory) InsertProduct(ctx context.Context, name string, price float64, categoryID int64, color string) (*models.Product, error) {
	if err := m.fail("InsertProduct"); err != nil {
		return nil, err
	}
	max := 0
	for _, p := range m.Products {
		if p.CategoryID == categoryID && p.SortOrder > max {
			max = p.SortOrder
		}
	}
	p := &models.Product{ID: m.id(), Name: name, Price: price, CategoryID: categoryID, Color: color, SortOrder: max + 1}
	m.Products[p.ID] = p
	copy := *p
	return &copy, nil
}

func (m *Memory) UpdateProduct(ctx context.Context, id int64, name string, price float64, categoryID int64, color string) error {
	if err := m.fail("UpdateProduct"); err != nil {
		return err
	}
	if p, ok := m.Products[id]; ok {
		p.Name, p.Price, p.CategoryID, p.Color = name, price, categoryID, color
	}
	return nil
}

func (m *Memory) DeleteProduct(ctx context.Context, id int64) error {
	if err := m.fail("DeleteProduct"); err != nil {
		return err
	}
	delete(m.Products, id)
	return nil
}

func (m *Memory) SetProductSortOrder(ctx context.Context, id, categoryID int64, sortOrder int) error {
	if err := m.fail("SetProductSortOrder"); err != nil {
		return err
	}
	// Scoped exactly like the SQL: wrong category matches nothing.
	if p, ok := m.Products[id]; ok && p.CategoryID == categoryID {
		p.SortOrder = sortOrder
	}
	return nil
}

// --- order ledger ---

func (m *Memory) GetOrderLine(ctx context.Context, id int64) (*models.OrderLine, error) {
	if err := m.fail("GetOrderLine"); err != nil {
		return nil, err
	}
	l, ok := m.Lines[id]
	if !ok {
		return nil, nil
	}
	copy := *l
	return &copy, nil
}

func (m *Memory) FindOrderLine(ctx context.Context, tableID, productID int64) (*models.OrderLine, error) {
	if err := m.fail("FindOrderLine"); err != nil {
		return nil, err
	}
	var found *models.OrderLine
	for _, l := range m.Lines {
		if l.TableID == tableID && l.ProductID == productID {
			if found == nil || l.ID < found.ID {
				found = l
			}
		}
	}
	if found == nil {
		return nil, nil
	}
	copy := *found
	return &copy, nil
}

func (m *Memory) LinesForTable(ctx context.Context, tableID int64) ([]models.OrderLine, error) {
	if err := m.fail("LinesForTable"); err != nil {
		return nil, err
	}
	var lines []models.OrderLine
	for _, l := range m.Lines {
		if l.TableID == tableID {
			lines = append(lines, *l)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

func (m *Memory) OrderViewForTable(ctx context.Context, tableID int64) ([]models.OrderLineView, error) {
	if err := m.fail("OrderViewForTable"); err != nil {
		return nil, err
	}
	lines, _ := m.LinesForTable(ctx, tableID)
	views := make([]models.OrderLineView, 0, len(lines))
	// Newest first, like the SQL view.
	for i := len(lines) - 1; i >= 0; i-- {
		l := lines[i]
		view := models.OrderLineView{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Total:     l.Total,
		}
		if p, ok := m.Products[l.ProductID]; ok {
			view.Name, view.Price = p.Name, p.Price
		}
		views = append(views, view)
	}
	return views, nil
}

func (m *Memory) InsertOrderLine(ctx context.Context, line *models.OrderLine) error {
	if err := m.fail("InsertOrderLine"); err != nil {
		return err
	}
	line.ID = m.id()
	line.CreatedAt = time.Now().UTC()
	copy := *line
	m.Lines[line.ID] = &copy
	return nil
}

func (m *Memory) UpdateOrderLine(ctx context.Context, id int64, quantity int, total float64) error {
	if err := m.fail("UpdateOrderLine"); err != nil {
		return err
	}
	if l, ok := m.Lines[id]; ok {
		l.Quantity, l.Total = quantity, total
	}
	return nil
}

func (m *Memory) DeleteOrderLine(ctx context.Context, id int64) error {
	if err := m.fail("DeleteOrderLine"); err != nil {
		return err
	}
	delete(m.Lines, id)
	return nil
}

func (m *Memory) DeleteLinesForTable(ctx context.Context, tableID int64) error {
	if err := m.fail("DeleteLinesForTable"); err != nil {
		return err
	}
	for id, l := range m.Lines {
		if l.TableID == tableID {
			delete(m.Lines, id)
		}
	}
	return nil
}

// --- payments and reporting ---

func (m *Memory) InsertPayment(ctx context.Context, payment *models.Payment) error {
	if err := m.fail("InsertPayment"); err != nil {
		return err
	}
	payment.ID = m.id()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	m.Payments = append(m.Payments, *payment)
	return nil
}

func (m *Memory) localDay(t time.Time, utcOffsetHours int) string {
	return t.UTC().Add(time.Duration(utcOffsetHours) * time.Hour).Format("2006-01-02")
}

func (m *Memory) PaymentsByDate(ctx context.Context, date string, utcOffsetHours int) ([]models.PaymentView, error) {
	if err := m.fail("PaymentsByDate"); err != nil {
		return nil, err
	}
	var views []models.PaymentView
	for _, p := range m.Payments {
		if date != "" && m.localDay(p.CreatedAt, utcOffsetHours) != date {
			continue
		}
		view := models.PaymentView{Payment: p}
		if t, ok := m.Tables[p.TableID]; ok {
			view.TableName = t.Name
		}
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].CreatedAt.After(views[j].CreatedAt) })
	return views, nil
}

func (m *Memory) DailyReport(ctx context.Context, date string, utcOffsetHours int) (*models.DailyReport, error) {
	if err := m.fail("DailyReport"); err != nil {
		return nil, err
	}
	report := &models.DailyReport{}
	tables := make(map[int64]struct{})
	for _, p := range m.Payments {
		if m.localDay(p.CreatedAt, utcOffsetHours) != date {
			continue
		}
		tables[p.TableID] = struct{}{}
		report.TotalPayments++
		report.TotalRevenue += p.Amount
		switch p.PaymentType {
		case models.PaymentTypeCash:
			report.CashRevenue += p.Amount
		case models.PaymentTypeCard:
			report.CardRevenue += p.Amount
		}
	}
	report.TotalTables = len(tables)
	return report, nil
}

// --- settings and users ---

func (m *Memory) ListSettings(ctx context.Context) (map[string]string, error) {
	if err := m.fail("ListSettings"); err != nil {
		return nil, err
	}
	settings := make(map[string]string, len(m.Settings))
	for k, v := range m.Settings {
		settings[k] = v
	}
	return settings, nil
}

func (m *Memory) GetSetting(ctx context.Context, key string) (string, error) {
	if err := m.fail("GetSetting"); err != nil {
		return "", err
	}
	return m.Settings[key], nil
}

func (m *Memory) PutSetting(ctx context.Context, key, value string) error {
	if err := m.fail("PutSetting"); err != nil {
		return err
	}
	m.Settings[key] = value
	return nil
}

func (m *Memory) GetUserByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	if err := m.fail("GetUserByCredentials"); err != nil {
		return nil, err
	}
	for _, u := range m.Users {
		if u.Username == username && u.Password == password {
			copy := u
			return &copy, nil
		}
	}
	return nil, nil
}
