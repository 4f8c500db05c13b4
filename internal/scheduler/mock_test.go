package scheduler_test

import (
	"context"
	"sync"
	"time"

	"vaccine-scheduler/internal/model"
	"vaccine-scheduler/internal/scheduler"
)

// mockStore implements scheduler.Store with in-memory ledgers that mirror
// the real store's write guards (idempotent publish, ErrSlotTaken on a lost
// claim, floor-at-zero doses, id collision mapping). Error fields inject
// failures; call slices record what the coordinator did.
type mockStore struct {
	mu sync.Mutex

	patients   map[string]*model.Account
	caregivers map[string]*model.Account
	vaccines   map[string]int
	slots      map[string]bool
	appts      map[int]*model.Appointment

	// error injection
	takeDoseErr   error
	returnDoseErr error
	publishErr    error
	deleteErr     error
	createErrOnce error
	slotTakenFor  map[string]bool
	idInUseForced int

	// call tracking
	publishCalls    []model.Slot
	withdrawCalls   []model.Slot
	takeDoseCalls   []string
	returnDoseCalls []string
	createCalls     int
	idInUseCalls    int
}

var _ scheduler.Store = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		patients:     make(map[string]*model.Account),
		caregivers:   make(map[string]*model.Account),
		vaccines:     make(map[string]int),
		slots:        make(map[string]bool),
		appts:        make(map[int]*model.Appointment),
		slotTakenFor: make(map[string]bool),
	}
}

func slotKey(day time.Time, caregiver string) string {
	return day.Format("01-02-2006") + "|" + caregiver
}

// seedSlot opens a slot without going through the coordinator.
func (m *mockStore) seedSlot(day time.Time, caregiver string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slotKey(day, caregiver)] = true
}

func (m *mockStore) seedAppointment(a *model.Appointment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appts[a.ID] = a
}

func (m *mockStore) doses(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vaccines[name]
}

func (m *mockStore) hasSlot(day time.Time, caregiver string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[slotKey(day, caregiver)]
}

// ----- identity store -----

func (m *mockStore) CreatePatient(ctx context.Context, a *model.Account) error {
	return m.createAccount(m.patients, a)
}

func (m *mockStore) CreateCaregiver(ctx context.Context, a *model.Account) error {
	return m.createAccount(m.caregivers, a)
}

func (m *mockStore) createAccount(table map[string]*model.Account, a *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := table[a.Username]; ok {
		return model.ErrUsernameTaken
	}
	table[a.Username] = a
	return nil
}

func (m *mockStore) Patient(ctx context.Context, username string) (*model.Account, error) {
	return m.account(m.patients, username)
}

func (m *mockStore) Caregiver(ctx context.Context, username string) (*model.Account, error) {
	return m.account(m.caregivers, username)
}

func (m *mockStore) account(table map[string]*model.Account, username string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := table[username]
	if !ok {
		return nil, model.ErrNotFound
	}
	return a, nil
}

// ----- inventory ledger -----

func (m *mockStore) Vaccine(ctx context.Context, name string) (*model.Vaccine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doses, ok := m.vaccines[name]
	if !ok {
		return nil, model.ErrUnknownVaccine
	}
	return &model.Vaccine{Name: name, Doses: doses}, nil
}

func (m *mockStore) Vaccines(ctx context.Context) ([]model.Vaccine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Vaccine
	for name, doses := range m.vaccines {
		out = append(out, model.Vaccine{Name: name, Doses: doses})
	}
	return out, nil
}

func (m *mockStore) AddDoses(ctx context.Context, name string, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vaccines[name] += n
	return nil
}

func (m *mockStore) TakeDose(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.takeDoseCalls = append(m.takeDoseCalls, name)
	if m.takeDoseErr != nil {
		return m.takeDoseErr
	}
	doses, ok := m.vaccines[name]
	if !ok {
		return model.ErrUnknownVaccine
	}
	if doses < 1 {
		return model.ErrOutOfStock
	}
	m.vaccines[name] = doses - 1
	return nil
}

func (m *mockStore) ReturnDose(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returnDoseCalls = append(m.returnDoseCalls, name)
	if m.returnDoseErr != nil {
		return m.returnDoseErr
	}
	if _, ok := m.vaccines[name]; !ok {
		return model.ErrUnknownVaccine
	}
	m.vaccines[name]++
	return nil
}

// ----- availability board -----

func (m *mockStore) Publish(ctx context.Context, slot model.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishCalls = append(m.publishCalls, slot)
	if m.publishErr != nil {
		return m.publishErr
	}
	m.slots[slotKey(slot.Day, slot.Caregiver)] = true
	return nil
}

func (m *mockStore) Withdraw(ctx context.Context, slot model.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.withdrawCalls = append(m.withdrawCalls, slot)
	delete(m.slots, slotKey(slot.Day, slot.Caregiver))
	return nil
}

func (m *mockStore) Consume(ctx context.Context, slot model.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slotTakenFor[slot.Caregiver] {
		return model.ErrSlotTaken
	}
	key := slotKey(slot.Day, slot.Caregiver)
	if !m.slots[key] {
		return model.ErrSlotTaken
	}
	delete(m.slots, key)
	return nil
}

func (m *mockStore) Caregivers(ctx context.Context, day time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := day.Format("01-02-2006") + "|"
	var out []string
	for key := range m.slots {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, key[len(prefix):])
		}
	}
	return out, nil
}

// ----- appointment ledger -----

func (m *mockStore) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErrOnce != nil {
		err := m.createErrOnce
		m.createErrOnce = nil
		return err
	}
	if _, ok := m.appts[a.ID]; ok {
		return model.ErrIDTaken
	}
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockStore) AppointmentIDInUse(ctx context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idInUseCalls++
	if m.idInUseForced > 0 {
		m.idInUseForced--
		return true, nil
	}
	_, ok := m.appts[id]
	return ok, nil
}

func (m *mockStore) FindForPatient(ctx context.Context, patient string, id int) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok || a.Patient != patient {
		return nil, model.ErrNotFound
	}
	return a, nil
}

func (m *mockStore) FindForCaregiver(ctx context.Context, caregiver string, id int) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok || a.Caregiver != caregiver {
		return nil, model.ErrNotFound
	}
	return a, nil
}

func (m *mockStore) PatientHasOnDay(ctx context.Context, patient string, day time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.appts {
		if a.Patient == patient && a.Day.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) CaregiverBusyOn(ctx context.Context, caregiver string, day time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.appts {
		if a.Caregiver == caregiver && a.Day.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) ListForPatient(ctx context.Context, patient string) ([]model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Appointment
	for _, a := range m.appts {
		if a.Patient == patient {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockStore) ListForCaregiver(ctx context.Context, caregiver string) ([]model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Appointment
	for _, a := range m.appts {
		if a.Caregiver == caregiver {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockStore) DeleteAppointment(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.appts, id)
	return nil
}
