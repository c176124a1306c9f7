// Package storetest provides an in-memory implementation of the store
// interfaces for listener tests. WithinTx snapshots the whole state and
// restores it when the unit of work fails, nested calls join the outer one.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"product-lifecycle-service/internal/domain"
	"product-lifecycle-service/internal/store"
)

type i18nKey struct {
	id     int64
	locale string
}

type priceKey struct {
	pseID      int64
	currencyID int64
}

type state struct {
	nextID int64

	products          map[int64]domain.Product
	productI18ns      map[i18nKey]domain.ProductI18n
	categories        map[int64]domain.Category
	productCategories []domain.ProductCategory
	contents          []domain.ProductAssociatedContent
	accessories       []domain.Accessory
	featureProducts   []domain.FeatureProduct
	featureAvs        map[int64]domain.FeatureAv
	featureAvI18ns    map[i18nKey]domain.FeatureAvI18n
	saleElements      map[int64]domain.ProductSaleElements
	prices            map[priceKey]domain.ProductPrice
	combinations      []domain.AttributeCombination
	taxRules          []domain.TaxRule
	images            map[int64]domain.ProductImage
	documents         map[int64]domain.ProductDocument
	imagePSEs         map[int64][]int64
	documentPSEs      map[int64][]int64
}

func newState() state {
	return state{
		products:       map[int64]domain.Product{},
		productI18ns:   map[i18nKey]domain.ProductI18n{},
		categories:     map[int64]domain.Category{},
		featureAvs:     map[int64]domain.FeatureAv{},
		featureAvI18ns: map[i18nKey]domain.FeatureAvI18n{},
		saleElements:   map[int64]domain.ProductSaleElements{},
		prices:         map[priceKey]domain.ProductPrice{},
		images:         map[int64]domain.ProductImage{},
		documents:      map[int64]domain.ProductDocument{},
		imagePSEs:      map[int64][]int64{},
		documentPSEs:   map[int64][]int64{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	c := make(map[K]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func copyLinks(m map[int64][]int64) map[int64][]int64 {
	c := make(map[int64][]int64, len(m))
	for k, v := range m {
		c[k] = append([]int64(nil), v...)
	}
	return c
}

func (s state) clone() state {
	return state{
		nextID:            s.nextID,
		products:          copyMap(s.products),
		productI18ns:      copyMap(s.productI18ns),
		categories:        copyMap(s.categories),
		productCategories: append([]domain.ProductCategory(nil), s.productCategories...),
		contents:          append([]domain.ProductAssociatedContent(nil), s.contents...),
		accessories:       append([]domain.Accessory(nil), s.accessories...),
		featureProducts:   append([]domain.FeatureProduct(nil), s.featureProducts...),
		featureAvs:        copyMap(s.featureAvs),
		featureAvI18ns:    copyMap(s.featureAvI18ns),
		saleElements:      copyMap(s.saleElements),
		prices:            copyMap(s.prices),
		combinations:      append([]domain.AttributeCombination(nil), s.combinations...),
		taxRules:          append([]domain.TaxRule(nil), s.taxRules...),
		images:            copyMap(s.images),
		documents:         copyMap(s.documents),
		imagePSEs:         copyLinks(s.imagePSEs),
		documentPSEs:      copyLinks(s.documentPSEs),
	}
}

// Memory is an in-memory store.
type Memory struct {
	mu       sync.Mutex
	s        state
	failures map[string]error

	// Commits and Rollbacks count the outermost units of work.
	Commits   int
	Rollbacks int
}

func NewMemory() *Memory {
	return &Memory{s: newState(), failures: map[string]error{}}
}

// FailOn makes the next call to method return err.
func (m *Memory) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[method] = err
}

// injected must be called with m.mu held.
func (m *Memory) injected(method string) error {
	err, ok := m.failures[method]
	if !ok {
		return nil
	}
	delete(m.failures, method)
	return err
}

func (m *Memory) id() int64 {
	m.s.nextID++
	return m.s.nextID
}

type txKey struct{}

func (m *Memory) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	snapshot := m.s.clone()
	m.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.mu.Lock()
		m.s = snapshot
		m.Rollbacks++
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.Commits++
	m.mu.Unlock()
	return nil
}

// --- Seeding ---

func (m *Memory) AddCategory(c domain.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.categories[c.ID] = c
}

func (m *Memory) AddTaxRule(tr domain.TaxRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.taxRules = append(m.s.taxRules, tr)
}

// ProductCategories returns the category links of a product.
func (m *Memory) ProductCategories(productID int64) []domain.ProductCategory {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []domain.ProductCategory
	for _, pc := range m.s.productCategories {
		if pc.ProductID == productID {
			list = append(list, pc)
		}
	}
	return list
}

// ProductCount returns the number of stored products.
func (m *Memory) ProductCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.s.products)
}

// SaleElementsImages returns the sale elements an image is associated with.
func (m *Memory) SaleElementsImages(imageID int64) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.s.imagePSEs[imageID]...)
}

// LinkImage associates an image with a sale element.
func (m *Memory) LinkImage(imageID, pseID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.imagePSEs[imageID] = append(m.s.imagePSEs[imageID], pseID)
}

// LinkDocument associates a document with a sale element.
func (m *Memory) LinkDocument(documentID, pseID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.documentPSEs[documentID] = append(m.s.documentPSEs[documentID], pseID)
}

// --- ProductStorer ---

func (m *Memory) defaultCategory(productID int64) int64 {
	for _, pc := range m.s.productCategories {
		if pc.ProductID == productID && pc.DefaultCategory {
			return pc.CategoryID
		}
	}
	return 0
}

func (m *Memory) refTaken(ref string, exceptID int64) bool {
	for _, p := range m.s.products {
		if p.Ref == ref && p.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *Memory) CreateProduct(_ context.Context, product *domain.Product, i18n *domain.ProductI18n) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("CreateProduct"); err != nil {
		return nil, err
	}
	if m.refTaken(product.Ref, 0) {
		return nil, store.ErrProductRefExists
	}

	created := *product
	created.ID = m.id()
	created.Position = 1
	for _, p := range m.s.products {
		if p.Position >= created.Position {
			created.Position = p.Position + 1
		}
	}
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	m.s.products[created.ID] = created

	if i18n != nil {
		i18n.ProductID = created.ID
		m.s.productI18ns[i18nKey{created.ID, i18n.Locale}] = *i18n
	}
	if created.DefaultCategoryID > 0 {
		m.s.productCategories = append(m.s.productCategories, domain.ProductCategory{
			ProductID: created.ID, CategoryID: created.DefaultCategoryID, DefaultCategory: true,
		})
	}
	return &created, nil
}

func (m *Memory) GetProductByID(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	p.DefaultCategoryID = m.defaultCategory(id)
	return &p, nil
}

func (m *Memory) UpdateProduct(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("UpdateProduct"); err != nil {
		return err
	}
	if _, ok := m.s.products[product.ID]; !ok {
		return store.ErrProductNotFound
	}
	if m.refTaken(product.Ref, product.ID) {
		return store.ErrProductRefExists
	}
	p := *product
	p.SaleElements = nil
	p.UpdatedAt = time.Now()
	m.s.products[p.ID] = p
	return nil
}

func (m *Memory) DeleteProduct(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.s.products[id]; !ok {
		return store.ErrProductNotFound
	}
	delete(m.s.products, id)
	for k := range m.s.productI18ns {
		if k.id == id {
			delete(m.s.productI18ns, k)
		}
	}
	m.s.productCategories = filter(m.s.productCategories, func(pc domain.ProductCategory) bool { return pc.ProductID != id })
	m.s.contents = filter(m.s.contents, func(c domain.ProductAssociatedContent) bool { return c.ProductID != id })
	m.s.accessories = filter(m.s.accessories, func(a domain.Accessory) bool { return a.ProductID != id })
	m.s.featureProducts = filter(m.s.featureProducts, func(fp domain.FeatureProduct) bool { return fp.ProductID != id })
	for pseID, pse := range m.s.saleElements {
		if pse.ProductID == id {
			m.deleteSaleElements(pseID)
		}
	}
	return nil
}

func (m *Memory) UpdateProductPosition(_ context.Context, id int64, mode string, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("UpdateProductPosition"); err != nil {
		return err
	}
	p, ok := m.s.products[id]
	if !ok {
		return store.ErrProductNotFound
	}

	var ids []int64
	for pid := range m.s.products {
		ids = append(ids, pid)
	}
	get := func(pid int64) int { return m.s.products[pid].Position }
	set := func(pid int64, pos int) {
		q := m.s.products[pid]
		q.Position = pos
		m.s.products[pid] = q
	}
	return movePosition(ids, p.ID, mode, position, get, set)
}

func (m *Memory) GetProductI18n(_ context.Context, productID int64, locale string) (*domain.ProductI18n, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.s.productI18ns[i18nKey{productID, locale}]
	if !ok {
		return nil, store.ErrProductI18nNotFound
	}
	return &i, nil
}

func (m *Memory) ListProductI18ns(_ context.Context, productID int64) ([]domain.ProductI18n, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []domain.ProductI18n
	for k, i := range m.s.productI18ns {
		if k.id == productID {
			list = append(list, i)
		}
	}
	sort.Slice(list, func(a, b int) bool { return list[a].Locale < list[b].Locale })
	return list, nil
}

func (m *Memory) SaveProductI18n(_ context.Context, i *domain.ProductI18n) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.productI18ns[i18nKey{i.ProductID, i.Locale}] = *i
	return nil
}

func (m *Memory) ProductURLExists(_ context.Context, locale, url string, exceptProductID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, i := range m.s.productI18ns {
		if k.locale == locale && k.id != exceptProductID && i.URL != nil && *i.URL == url {
			return true, nil
		}
	}
	return false, nil
}

// --- CategoryStorer ---

func (m *Memory) GetCategoryByID(_ context.Context, id int64) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.s.categories[id]
	if !ok {
		return nil, store.ErrCategoryNotFound
	}
	return &c, nil
}

func (m *Memory) FindProductCategory(_ context.Context, productID, categoryID int64) (*domain.ProductCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pc := range m.s.productCategories {
		if pc.ProductID == productID && pc.CategoryID == categoryID {
			return &pc, nil
		}
	}
	return nil, store.ErrProductCategoryNotFound
}

func (m *Memory) AddProductCategory(_ context.Context, pc *domain.ProductCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pc.Position = nextPosition(m.s.productCategories,
		func(o domain.ProductCategory) bool { return o.CategoryID == pc.CategoryID },
		func(o domain.ProductCategory) int { return o.Position })
	m.s.productCategories = append(m.s.productCategories, *pc)
	return nil
}

func (m *Memory) DeleteProductCategory(_ context.Context, productID, categoryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.s.productCategories)
	m.s.productCategories = filter(m.s.productCategories, func(pc domain.ProductCategory) bool {
		return pc.ProductID != productID || pc.CategoryID != categoryID
	})
	if len(m.s.productCategories) == before {
		return store.ErrProductCategoryNotFound
	}
	return nil
}

func (m *Memory) SetDefaultCategory(_ context.Context, productID, categoryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for i := range m.s.productCategories {
		pc := &m.s.productCategories[i]
		if pc.ProductID != productID {
			continue
		}
		pc.DefaultCategory = pc.CategoryID == categoryID
		found = found || pc.DefaultCategory
	}
	if !found {
		m.s.productCategories = append(m.s.productCategories, domain.ProductCategory{
			ProductID: productID, CategoryID: categoryID, DefaultCategory: true,
		})
	}
	return nil
}

// --- AssociationStorer ---

func (m *Memory) FindAssociatedContent(_ context.Context, productID, contentID int64) (*domain.ProductAssociatedContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.s.contents {
		if c.ProductID == productID && c.ContentID == contentID {
			return &c, nil
		}
	}
	return nil, store.ErrContentNotFound
}

func (m *Memory) ListAssociatedContents(_ context.Context, productID int64) ([]domain.ProductAssociatedContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := filter(m.s.contents, func(c domain.ProductAssociatedContent) bool { return c.ProductID == productID })
	sort.Slice(list, func(a, b int) bool { return list[a].Position < list[b].Position })
	return list, nil
}

func (m *Memory) AddAssociatedContent(_ context.Context, c *domain.ProductAssociatedContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("AddAssociatedContent"); err != nil {
		return err
	}
	c.ID = m.id()
	c.Position = nextPosition(m.s.contents,
		func(o domain.ProductAssociatedContent) bool { return o.ProductID == c.ProductID },
		func(o domain.ProductAssociatedContent) int { return o.Position })
	m.s.contents = append(m.s.contents, *c)
	return nil
}

func (m *Memory) DeleteAssociatedContent(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.s.contents)
	m.s.contents = filter(m.s.contents, func(c domain.ProductAssociatedContent) bool { return c.ID != id })
	if len(m.s.contents) == before {
		return store.ErrContentNotFound
	}
	return nil
}

func (m *Memory) UpdateAssociatedContentPosition(_ context.Context, id int64, mode string, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("UpdateAssociatedContentPosition"); err != nil {
		return err
	}
	idx := -1
	for i, c := range m.s.contents {
		if c.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return store.ErrContentNotFound
	}

	productID := m.s.contents[idx].ProductID
	index := map[int64]int{}
	var ids []int64
	for i, c := range m.s.contents {
		if c.ProductID == productID {
			ids = append(ids, c.ID)
			index[c.ID] = i
		}
	}
	get := func(cid int64) int { return m.s.contents[index[cid]].Position }
	set := func(cid int64, pos int) { m.s.contents[index[cid]].Position = pos }
	return movePosition(ids, id, mode, position, get, set)
}

func (m *Memory) FindAccessory(_ context.Context, productID, accessoryID int64) (*domain.Accessory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.s.accessories {
		if a.ProductID == productID && a.Accessory == accessoryID {
			return &a, nil
		}
	}
	return nil, store.ErrAccessoryNotFound
}

func (m *Memory) AddAccessory(_ context.Context, a *domain.Accessory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.id()
	a.Position = nextPosition(m.s.accessories,
		func(o domain.Accessory) bool { return o.ProductID == a.ProductID },
		func(o domain.Accessory) int { return o.Position })
	m.s.accessories = append(m.s.accessories, *a)
	return nil
}

func (m *Memory) DeleteAccessory(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.s.accessories)
	m.s.accessories = filter(m.s.accessories, func(a domain.Accessory) bool { return a.ID != id })
	if len(m.s.accessories) == before {
		return store.ErrAccessoryNotFound
	}
	return nil
}

func (m *Memory) UpdateAccessoryPosition(_ context.Context, id int64, mode string, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("UpdateAccessoryPosition"); err != nil {
		return err
	}
	idx := -1
	for i, a := range m.s.accessories {
		if a.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return store.ErrAccessoryNotFound
	}

	productID := m.s.accessories[idx].ProductID
	index := map[int64]int{}
	var ids []int64
	for i, a := range m.s.accessories {
		if a.ProductID == productID {
			ids = append(ids, a.ID)
			index[a.ID] = i
		}
	}
	get := func(aid int64) int { return m.s.accessories[index[aid]].Position }
	set := func(aid int64, pos int) { m.s.accessories[index[aid]].Position = pos }
	return movePosition(ids, id, mode, position, get, set)
}

// --- FeatureStorer ---

func (m *Memory) ListFeatureProducts(_ context.Context, productID int64) ([]domain.FeatureProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return filter(m.s.featureProducts, func(fp domain.FeatureProduct) bool { return fp.ProductID == productID }), nil
}

func (m *Memory) FindFeatureProduct(_ context.Context, productID, featureID int64, featureAvID *int64) (*domain.FeatureProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, fp := range m.s.featureProducts {
		if fp.ProductID != productID || fp.FeatureID != featureID {
			continue
		}
		if featureAvID != nil && (fp.FeatureAvID == nil || *fp.FeatureAvID != *featureAvID) {
			continue
		}
		return &fp, nil
	}
	return nil, store.ErrFeatureProductNotFound
}

// SaveFeatureProduct accepts invalid rows as is, so tests can seed them.
// Validation happens in the listeners and in PostgresStore.
func (m *Memory) SaveFeatureProduct(_ context.Context, fp *domain.FeatureProduct) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("SaveFeatureProduct"); err != nil {
		return err
	}
	if fp.ID == 0 {
		fp.ID = m.id()
		fp.Position = nextPosition(m.s.featureProducts,
			func(o domain.FeatureProduct) bool { return o.ProductID == fp.ProductID },
			func(o domain.FeatureProduct) int { return o.Position })
		m.s.featureProducts = append(m.s.featureProducts, *fp)
		return nil
	}
	for i := range m.s.featureProducts {
		if m.s.featureProducts[i].ID == fp.ID {
			m.s.featureProducts[i] = *fp
			return nil
		}
	}
	return store.ErrFeatureProductNotFound
}

func (m *Memory) DeleteFeatureProducts(_ context.Context, productID, featureID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.featureProducts = filter(m.s.featureProducts, func(fp domain.FeatureProduct) bool {
		return fp.ProductID != productID || fp.FeatureID != featureID
	})
	return nil
}

func (m *Memory) CreateFeatureAv(_ context.Context, av *domain.FeatureAv) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	av.ID = m.id()
	m.s.featureAvs[av.ID] = *av
	return nil
}

func (m *Memory) GetFeatureAvI18n(_ context.Context, featureAvID int64, locale string) (*domain.FeatureAvI18n, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.s.featureAvI18ns[i18nKey{featureAvID, locale}]
	if !ok {
		return nil, store.ErrFeatureAvI18nNotFound
	}
	return &i, nil
}

func (m *Memory) ListFeatureAvI18ns(_ context.Context, featureAvID int64) ([]domain.FeatureAvI18n, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []domain.FeatureAvI18n
	for k, i := range m.s.featureAvI18ns {
		if k.id == featureAvID {
			list = append(list, i)
		}
	}
	sort.Slice(list, func(a, b int) bool { return list[a].Locale < list[b].Locale })
	return list, nil
}

func (m *Memory) SaveFeatureAvI18n(_ context.Context, i *domain.FeatureAvI18n) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("SaveFeatureAvI18n"); err != nil {
		return err
	}
	m.s.featureAvI18ns[i18nKey{i.ID, i.Locale}] = *i
	return nil
}

// --- SaleElementsStorer ---

func (m *Memory) GetDefaultSaleElements(_ context.Context, productID int64) (*domain.ProductSaleElements, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pse := range m.sortedSaleElements(productID) {
		if pse.IsDefault {
			return &pse, nil
		}
	}
	return nil, store.ErrSaleElementsNotFound
}

func (m *Memory) sortedSaleElements(productID int64) []domain.ProductSaleElements {
	var list []domain.ProductSaleElements
	for _, pse := range m.s.saleElements {
		if pse.ProductID == productID {
			list = append(list, pse)
		}
	}
	sort.Slice(list, func(a, b int) bool { return list[a].ID < list[b].ID })
	return list
}

func (m *Memory) ListSaleElements(_ context.Context, productID int64) ([]domain.ProductSaleElements, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedSaleElements(productID), nil
}

func (m *Memory) CreateSaleElements(_ context.Context, pse *domain.ProductSaleElements, prices []domain.ProductPrice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("CreateSaleElements"); err != nil {
		return err
	}
	pse.ID = m.id()
	m.s.saleElements[pse.ID] = *pse
	for i := range prices {
		prices[i].ProductSaleElementsID = pse.ID
		m.s.prices[priceKey{pse.ID, prices[i].CurrencyID}] = prices[i]
	}
	return nil
}

func (m *Memory) UpdateSaleElements(_ context.Context, pse *domain.ProductSaleElements) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.s.saleElements[pse.ID]; !ok {
		return store.ErrSaleElementsNotFound
	}
	m.s.saleElements[pse.ID] = *pse
	return nil
}

// deleteSaleElements must be called with m.mu held.
func (m *Memory) deleteSaleElements(pseID int64) {
	delete(m.s.saleElements, pseID)
	for k := range m.s.prices {
		if k.pseID == pseID {
			delete(m.s.prices, k)
		}
	}
	m.s.combinations = filter(m.s.combinations, func(ac domain.AttributeCombination) bool {
		return ac.ProductSaleElementsID != pseID
	})
}

func (m *Memory) DeleteNonDefaultSaleElements(_ context.Context, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, pse := range m.s.saleElements {
		if pse.ProductID == productID && !pse.IsDefault {
			m.deleteSaleElements(id)
		}
	}
	return nil
}

func (m *Memory) GetProductPrice(ctx context.Context, pseID int64) (*domain.ProductPrice, error) {
	prices, _ := m.ListProductPrices(ctx, pseID)
	if len(prices) == 0 {
		return nil, store.ErrPriceNotFound
	}
	return &prices[0], nil
}

func (m *Memory) ListProductPrices(_ context.Context, pseID int64) ([]domain.ProductPrice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []domain.ProductPrice
	for k, p := range m.s.prices {
		if k.pseID == pseID {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(a, b int) bool { return list[a].CurrencyID < list[b].CurrencyID })
	return list, nil
}

func (m *Memory) SaveProductPrice(_ context.Context, p *domain.ProductPrice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.prices[priceKey{p.ProductSaleElementsID, p.CurrencyID}] = *p
	return nil
}

func (m *Memory) ListAttributeCombinations(_ context.Context, pseID int64) ([]domain.AttributeCombination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return filter(m.s.combinations, func(ac domain.AttributeCombination) bool { return ac.ProductSaleElementsID == pseID }), nil
}

func (m *Memory) AddAttributeCombination(_ context.Context, ac *domain.AttributeCombination) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("AddAttributeCombination"); err != nil {
		return err
	}
	m.s.combinations = append(m.s.combinations, *ac)
	return nil
}

func (m *Memory) DeleteAttributeCombinations(_ context.Context, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.combinations = filter(m.s.combinations, func(ac domain.AttributeCombination) bool {
		pse, ok := m.s.saleElements[ac.ProductSaleElementsID]
		return !ok || pse.ProductID != productID
	})
	return nil
}

// --- TaxRuleStorer ---

func (m *Memory) GetDefaultTaxRule(_ context.Context) (*domain.TaxRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tr := range m.s.taxRules {
		if tr.IsDefault {
			return &tr, nil
		}
	}
	return nil, store.ErrTaxRuleNotFound
}

// --- FileStorer ---

func (m *Memory) GetProductImage(_ context.Context, id int64) (*domain.ProductImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.s.images[id]
	if !ok {
		return nil, store.ErrImageNotFound
	}
	return &img, nil
}

func (m *Memory) ListProductImages(_ context.Context, productID int64) ([]domain.ProductImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []domain.ProductImage
	for _, img := range m.s.images {
		if img.ProductID == productID {
			list = append(list, img)
		}
	}
	sort.Slice(list, func(a, b int) bool { return list[a].Position < list[b].Position })
	return list, nil
}

func (m *Memory) CreateProductImage(_ context.Context, img *domain.ProductImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("CreateProductImage"); err != nil {
		return err
	}
	img.ID = m.id()
	m.s.images[img.ID] = *img
	return nil
}

func (m *Memory) DeleteProductImage(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.s.images[id]; !ok {
		return store.ErrImageNotFound
	}
	delete(m.s.images, id)
	return nil
}

func (m *Memory) DeleteImageSaleElementsAssociations(_ context.Context, imageID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.s.imagePSEs, imageID)
	return nil
}

func (m *Memory) GetProductDocument(_ context.Context, id int64) (*domain.ProductDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.s.documents[id]
	if !ok {
		return nil, store.ErrDocumentNotFound
	}
	return &doc, nil
}

func (m *Memory) ListProductDocuments(_ context.Context, productID int64) ([]domain.ProductDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []domain.ProductDocument
	for _, doc := range m.s.documents {
		if doc.ProductID == productID {
			list = append(list, doc)
		}
	}
	sort.Slice(list, func(a, b int) bool { return list[a].Position < list[b].Position })
	return list, nil
}

func (m *Memory) CreateProductDocument(_ context.Context, doc *domain.ProductDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc.ID = m.id()
	m.s.documents[doc.ID] = *doc
	return nil
}

func (m *Memory) DeleteProductDocument(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.s.documents[id]; !ok {
		return store.ErrDocumentNotFound
	}
	delete(m.s.documents, id)
	return nil
}

func (m *Memory) DeleteDocumentSaleElementsAssociations(_ context.Context, documentID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.s.documentPSEs, documentID)
	return nil
}

// --- Helpers ---

func filter[T any](list []T, keep func(T) bool) []T {
	var out []T
	for _, v := range list {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// nextPosition returns the position after the highest one among the rows kept.
func nextPosition[T any](list []T, keep func(T) bool, position func(T) int) int {
	highest := 0
	for _, v := range list {
		if keep(v) && position(v) > highest {
			highest = position(v)
		}
	}
	return highest + 1
}

// movePosition applies a position change among ids the way PostgresStore does.
func movePosition(ids []int64, id int64, mode string, position int, get func(int64) int, set func(int64, int)) error {
	switch mode {
	case store.PositionAbsolute:
		current := get(id)
		for _, other := range ids {
			if other == id {
				continue
			}
			pos := get(other)
			if position < current && pos >= position && pos < current {
				set(other, pos+1)
			}
			if position > current && pos > current && pos <= position {
				set(other, pos-1)
			}
		}
		set(id, position)
		return nil
	case store.PositionUp, store.PositionDown:
	default:
		return store.ErrInvalidPositionMode
	}

	current := get(id)
	var neighbour int64
	found := false
	for _, other := range ids {
		if other == id {
			continue
		}
		pos := get(other)
		if mode == store.PositionUp && pos < current && (!found || pos > get(neighbour)) {
			neighbour, found = other, true
		}
		if mode == store.PositionDown && pos > current && (!found || pos < get(neighbour)) {
			neighbour, found = other, true
		}
	}
	if !found {
		return nil
	}
	other := get(neighbour)
	set(neighbour, current)
	set(id, other)
	return nil
}
