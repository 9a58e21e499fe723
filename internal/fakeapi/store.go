package fakeapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
)

type userRecord struct {
	domain.User
	passwordHash []byte
}

// store is the fake's whole database. Every method takes the lock; callers
// never see internal slices.
type store struct {
	mu sync.RWMutex

	users      map[int64]*userRecord
	branches   []domain.Branch
	sales      map[int64]domain.Sale
	blueprints map[int64]domain.Blueprint
	photos     []domain.BlueprintPhoto

	nextUser, nextSale, nextBlueprint, nextPhoto int64
	now                                          func() time.Time
}

func newStore(now func() time.Time) *store {
	return &store{
		users:      map[int64]*userRecord{},
		sales:      map[int64]domain.Sale{},
		blueprints: map[int64]domain.Blueprint{},
		now:        now,
	}
}

// ============================================================
// Users & branches
// ============================================================

func (s *store) addUser(u domain.User, hash []byte) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	u.UserID = s.nextUser
	s.users[u.UserID] = &userRecord{User: u, passwordHash: hash}
	return u
}

func (s *store) userByName(name string) (userRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.UserName == name {
			return *u, true
		}
	}
	return userRecord{}, false
}

func (s *store) userByID(id int64) (userRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return userRecord{}, false
	}
	return *u, true
}

func (s *store) listUsers() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (s *store) updateUser(id int64, name string, hash []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false
	}
	u.UserName = name
	u.passwordHash = hash
	return true
}

func (s *store) deleteUser(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	return true
}

func (s *store) addBranch(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.branches = append(s.branches, domain.Branch{BranchID: int64(len(s.branches) + 1), BranchName: name})
}

func (s *store) listBranches() []domain.Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Branch, len(s.branches))
	copy(out, s.branches)
	return out
}

func (s *store) branchExists(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.branches {
		if b.BranchID == id {
			return true
		}
	}
	return false
}

// ============================================================
// Sales
// ============================================================

func (s *store) addSale(d domain.SaleDraft) domain.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSale++
	ts := domain.Timestamp{Time: s.now().UTC()}
	sale := saleFromDraft(s.nextSale, d)
	sale.CreatedAt, sale.UpdatedAt = ts, ts
	s.sales[sale.SaleID] = sale
	return sale
}

func (s *store) updateSale(id int64, d domain.SaleDraft) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.sales[id]
	if !ok {
		return false
	}
	sale := saleFromDraft(id, d)
	sale.CreatedAt = old.CreatedAt
	sale.UpdatedAt = domain.Timestamp{Time: s.now().UTC()}
	s.sales[id] = sale
	return true
}

// deleteSale removes the sale together with its blueprints and photos.
func (s *store) deleteSale(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sales[id]; !ok {
		return false
	}
	delete(s.sales, id)
	for bid, bp := range s.blueprints {
		if bp.SaleID == id {
			delete(s.blueprints, bid)
		}
	}
	kept := s.photos[:0]
	for _, p := range s.photos {
		if p.SaleID != id {
			kept = append(kept, p)
		}
	}
	s.photos = kept
	return true
}

func (s *store) sale(id int64) (domain.Sale, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sale, ok := s.sales[id]
	return sale, ok
}

// findSales returns the sales matching keep, newest first.
func (s *store) findSales(keep func(domain.Sale) bool) []domain.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Sale{}
	for _, sale := range s.sales {
		if keep == nil || keep(sale) {
			out = append(out, sale)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SaleID > out[j].SaleID })
	return out
}

func saleFromDraft(id int64, d domain.SaleDraft) domain.Sale {
	return domain.Sale{
		SaleID:            id,
		BranchID:          d.BranchID,
		CustomerName:      strings.TrimSpace(d.CustomerName),
		Details:           d.Details,
		PaymentMethod:     d.PaymentMethod,
		TotalAmount:       domain.Money(d.TotalAmount),
		TotalMoneyEntries: domain.Money(d.TotalMoneyEntries),
		PhoneNumber:       d.PhoneNumber,
		Status:            d.Status,
	}
}

// ============================================================
// Blueprints & photos
// ============================================================

func (s *store) addBlueprint(d domain.BlueprintDraft) domain.Blueprint {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBlueprint++
	bp := blueprintFromDraft(s.nextBlueprint, d)
	s.blueprints[bp.BlueprintID] = bp
	return bp
}

func (s *store) updateBlueprint(id int64, d domain.BlueprintDraft) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.blueprints[id]
	if !ok {
		return false
	}
	bp := blueprintFromDraft(id, d)
	bp.PhotoURL = old.PhotoURL
	s.blueprints[id] = bp
	return true
}

func (s *store) deleteBlueprint(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blueprints[id]; !ok {
		return false
	}
	delete(s.blueprints, id)
	kept := s.photos[:0]
	for _, p := range s.photos {
		if p.BlueprintID != id {
			kept = append(kept, p)
		}
	}
	s.photos = kept
	return true
}

func (s *store) blueprint(id int64) (domain.Blueprint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bp, ok := s.blueprints[id]
	return bp, ok
}

func (s *store) findBlueprints(saleID int64) []domain.Blueprint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Blueprint{}
	for _, bp := range s.blueprints {
		if saleID == 0 || bp.SaleID == saleID {
			out = append(out, bp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BlueprintID < out[j].BlueprintID })
	return out
}

// addPhoto records the photo and makes it the blueprint's current photo.
func (s *store) addPhoto(p domain.BlueprintPhoto) (domain.BlueprintPhoto, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bp, ok := s.blueprints[p.BlueprintID]
	if !ok {
		return p, false
	}
	s.nextPhoto++
	p.PhotoID = s.nextPhoto
	p.SaleID = bp.SaleID
	s.photos = append(s.photos, p)
	bp.PhotoURL = p.PhotoURL
	s.blueprints[bp.BlueprintID] = bp
	return p, true
}

func (s *store) photosBySale(saleID int64) []domain.BlueprintPhoto {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.BlueprintPhoto{}
	for _, p := range s.photos {
		if p.SaleID == saleID {
			out = append(out, p)
		}
	}
	return out
}

func blueprintFromDraft(id int64, d domain.BlueprintDraft) domain.Blueprint {
	return domain.Blueprint{
		BlueprintID:   id,
		SaleID:        d.SaleID,
		BlueprintCode: strings.TrimSpace(d.BlueprintCode),
		Description:   d.Description,
		Material:      d.Material,
		Colour:        d.Colour,
		Status:        d.Status,
	}
}
