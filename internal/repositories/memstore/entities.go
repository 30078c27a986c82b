package memstore

import (
	"context"
	"sort"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/codegen"
	"fleet-backend/internal/models"
)

// Companies implements services.CompanyStore.
type Companies struct{ s *Store }

func (s *Store) Companies() *Companies { return &Companies{s} }

func (r *Companies) Create(_ context.Context, c *models.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("companies.create"); err != nil {
		return err
	}
	for _, other := range r.s.d.companies {
		if other.Name == c.Name || other.Code == c.Code {
			return apperrors.BusinessRule("company %q already exists", c.Name)
		}
	}
	c.ID = r.s.nextID("companies")
	c.CreatedAt, c.UpdatedAt = r.s.now(), r.s.now()
	cp := *c
	r.s.d.companies[c.ID] = &cp
	return nil
}

func (r *Companies) Get(_ context.Context, id int) (*models.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.d.companies[id]
	if !ok {
		return nil, apperrors.NotFound("company", id)
	}
	cp := *c
	return &cp, nil
}

func (r *Companies) FindByName(_ context.Context, name string) (*models.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.d.companies {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("company", name)
}

func (r *Companies) List(_ context.Context) ([]*models.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Company{}
	for _, c := range r.s.d.companies {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Count reports how many companies exist.
func (r *Companies) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.d.companies)
}

// Drivers implements services.DriverStore.
type Drivers struct{ s *Store }

func (s *Store) Drivers() *Drivers { return &Drivers{s} }

func (r *Drivers) Create(_ context.Context, d *models.Driver) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("drivers.create"); err != nil {
		return err
	}
	for _, other := range r.s.d.drivers {
		if other.IqamaID == d.IqamaID || other.Code == d.Code {
			return apperrors.BusinessRule("driver with iqama id %s already exists", d.IqamaID)
		}
	}
	d.ID = r.s.nextID("drivers")
	d.CreatedAt, d.UpdatedAt = r.s.now(), r.s.now()
	cp := *d
	r.s.d.drivers[d.ID] = &cp
	return nil
}

func (r *Drivers) Get(_ context.Context, id int) (*models.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.d.drivers[id]
	if !ok {
		return nil, apperrors.NotFound("driver", id)
	}
	cp := *d
	return &cp, nil
}

func (r *Drivers) FindByIqama(_ context.Context, iqamaID string) (*models.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.d.drivers {
		if d.IqamaID == iqamaID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("driver", iqamaID)
}

func (r *Drivers) List(_ context.Context) ([]*models.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Driver{}
	for _, d := range r.s.d.drivers {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Count reports how many drivers exist.
func (r *Drivers) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.d.drivers)
}

// Vehicles implements services.VehicleStore.
type Vehicles struct{ s *Store }

func (s *Store) Vehicles() *Vehicles { return &Vehicles{s} }

func (r *Vehicles) Create(_ context.Context, v *models.Vehicle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.d.vehicles {
		if other.PlateNo == v.PlateNo {
			return apperrors.BusinessRule("vehicle with plate %s already exists", v.PlateNo)
		}
	}
	if v.Status == "" {
		v.Status = models.VehicleAvailable
	}
	v.ID = r.s.nextID("vehicles")
	v.CreatedAt, v.UpdatedAt = r.s.now(), r.s.now()
	cp := *v
	r.s.d.vehicles[v.ID] = &cp
	return nil
}

func (r *Vehicles) Get(_ context.Context, id int) (*models.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.d.vehicles[id]
	if !ok {
		return nil, apperrors.NotFound("vehicle", id)
	}
	cp := *v
	return &cp, nil
}

func (r *Vehicles) List(_ context.Context) ([]*models.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Vehicle{}
	for _, v := range r.s.d.vehicles {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlateNo < out[j].PlateNo })
	return out, nil
}

func (r *Vehicles) UpdateStatus(_ context.Context, id int, status models.VehicleStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.d.vehicles[id]
	if !ok {
		return apperrors.NotFound("vehicle", id)
	}
	v.Status = status
	v.UpdatedAt = r.s.now()
	return nil
}

// Customers implements services.CustomerStore.
type Customers struct{ s *Store }

func (s *Store) Customers() *Customers { return &Customers{s} }

func (r *Customers) Create(_ context.Context, c *models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.nextID("customers")
	c.CreatedAt, c.UpdatedAt = r.s.now(), r.s.now()
	cp := *c
	r.s.d.customers[c.ID] = &cp
	return nil
}

func (r *Customers) Get(_ context.Context, id int) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.d.customers[id]
	if !ok {
		return nil, apperrors.NotFound("customer", id)
	}
	cp := *c
	return &cp, nil
}

func (r *Customers) List(_ context.Context) ([]*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Customer{}
	for _, c := range r.s.d.customers {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Loads implements services.LoadStore.
type Loads struct{ s *Store }

func (s *Store) Loads() *Loads { return &Loads{s} }

func (r *Loads) Create(_ context.Context, l *models.Load) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("loads.create"); err != nil {
		return err
	}
	for _, other := range r.s.d.loads {
		if other.RentalCode == l.RentalCode {
			return apperrors.BusinessRule("rental code %s already exists", l.RentalCode)
		}
	}
	l.ID = r.s.nextID("loads")
	l.CreatedAt, l.UpdatedAt = r.s.now(), r.s.now()
	cp := *l
	r.s.d.loads[l.ID] = &cp
	return nil
}

func (r *Loads) Get(_ context.Context, id int) (*models.Load, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.d.loads[id]
	if !ok {
		return nil, apperrors.NotFound("load", id)
	}
	cp := *l
	return &cp, nil
}

func (r *Loads) GetByRentalCode(_ context.Context, code string) (*models.Load, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.d.loads {
		if l.RentalCode == code {
			cp := *l
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("load", code)
}

func (r *Loads) Lock(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.loads[id]; !ok {
		return apperrors.NotFound("load", id)
	}
	return nil
}

func (r *Loads) List(_ context.Context, f models.LoadFilter) ([]*models.Load, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Load{}
	for _, l := range r.s.d.loads {
		if (f.Status != "" && l.Status != f.Status) ||
			(f.CompanyID != nil && (l.CompanyID == nil || *l.CompanyID != *f.CompanyID)) ||
			(f.DriverID != nil && (l.DriverID == nil || *l.DriverID != *f.DriverID)) {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *Loads) Update(_ context.Context, l *models.Load) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("loads.update"); err != nil {
		return err
	}
	cur, ok := r.s.d.loads[l.ID]
	if !ok {
		return apperrors.NotFound("load", l.ID)
	}
	cp := *l
	cp.RentalCode, cp.CreatedAt, cp.UpdatedAt = cur.RentalCode, cur.CreatedAt, r.s.now()
	r.s.d.loads[l.ID] = &cp
	return nil
}

// Delete removes the load and detaches any payments pointing at it.
func (r *Loads) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.loads[id]; !ok {
		return apperrors.NotFound("load", id)
	}
	delete(r.s.d.loads, id)
	for _, p := range r.s.d.payments {
		if p.LoadID != nil && *p.LoadID == id {
			p.LoadID = nil
		}
	}
	return nil
}

// Count reports how many loads exist.
func (r *Loads) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.d.loads)
}

// Users implements services.UserStore.
type Users struct{ s *Store }

func (s *Store) Users() *Users { return &Users{s} }

func (r *Users) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.d.users {
		if other.Email == u.Email {
			return apperrors.BusinessRule("user with email %s already exists", u.Email)
		}
	}
	if u.Role == "" {
		u.Role = models.RoleStaff
	}
	u.ID = r.s.nextID("users")
	u.CreatedAt, u.UpdatedAt = r.s.now(), r.s.now()
	cp := *u
	r.s.d.users[u.ID] = &cp
	return nil
}

func (r *Users) Get(_ context.Context, id int) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.d.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.d.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("user", email)
}

func (r *Users) List(_ context.Context) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.User{}
	for _, u := range r.s.d.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Users) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.d.users), nil
}

func (r *Users) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.users[id]; !ok {
		return apperrors.NotFound("user", id)
	}
	delete(r.s.d.users, id)
	return nil
}

// ActionLogs implements services.ActionLogStore.
type ActionLogs struct{ s *Store }

func (s *Store) ActionLogs() *ActionLogs { return &ActionLogs{s} }

func (r *ActionLogs) Record(_ context.Context, l *models.ActionLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *l
	cp.ID = r.s.nextID("action_logs")
	cp.CreatedAt = r.s.now()
	r.s.d.logs = append(r.s.d.logs, &cp)
	return nil
}

func (r *ActionLogs) List(_ context.Context, limit int) ([]*models.ActionLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.ActionLog{}
	for i := len(r.s.d.logs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		cp := *r.s.d.logs[i]
		out = append(out, &cp)
	}
	return out, nil
}

// Counters implements services.CounterStore, seeding a family from the
// newest stored code the first time it is used.
type Counters struct{ s *Store }

func (s *Store) Counters() *Counters { return &Counters{s} }

func (r *Counters) Next(_ context.Context, f codegen.Family) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("counters.next"); err != nil {
		return 0, err
	}
	if n, ok := r.s.d.counters[f.Name]; ok {
		r.s.d.counters[f.Name] = n + 1
		return n + 1, nil
	}
	n := f.NextNumber(r.lastCode(f))
	r.s.d.counters[f.Name] = n
	return n, nil
}

// lastCode returns the code of the highest-id row in the family.
func (r *Counters) lastCode(f codegen.Family) string {
	best, code := 0, ""
	consider := func(id int, c string) {
		if _, ok := f.Parse(c); ok && id > best {
			best, code = id, c
		}
	}
	switch f.Name {
	case codegen.Company.Name:
		for id, c := range r.s.d.companies {
			consider(id, c.Code)
		}
	case codegen.Driver.Name:
		for id, d := range r.s.d.drivers {
			consider(id, d.Code)
		}
	case codegen.Receipt.Name:
		for id, p := range r.s.d.payments {
			consider(id, p.ReceiptCode)
		}
	default:
		for id, l := range r.s.d.loads {
			consider(id, l.RentalCode)
		}
	}
	return code
}
