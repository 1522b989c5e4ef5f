package services

import (
	"context"
	"sync"
	"time"

	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/realtime"
	"github.com/Govind-619/Clomora/repository"
	"github.com/Govind-619/Clomora/utils"
)

// AddressService manages a customer's address book. At most one address per
// user is the default; promoting one clears the others first.
type AddressService struct {
	repo   repository.AddressRepository
	broker realtime.Broker
	now    func() time.Time
	newID  func() string
}

func NewAddressService(repo repository.AddressRepository, broker realtime.Broker) *AddressService {
	return &AddressService{repo: repo, broker: broker, now: time.Now, newID: newID}
}

// List returns the default address first, then the rest newest first.
func (s *AddressService) List(ctx context.Context, uid string) ([]models.Address, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByUser(ctx, uid)
	if err != nil {
		return nil, utils.PersistenceFailureError("Failed to load addresses", err)
	}
	models.SortAddresses(list)
	return list, nil
}

// Get returns one of the user's addresses.
func (s *AddressService) Get(ctx context.Context, uid, id string) (*models.Address, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	a, err := s.repo.Get(ctx, uid, id)
	if err != nil {
		return nil, notFoundOr(err, utils.ErrAddressNotFound, "Failed to load address")
	}
	return a, nil
}

// Add validates and stores a new address.
func (s *AddressService) Add(ctx context.Context, uid string, in models.AddressInput) (*models.Address, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}

	a := in.ToAddress(uid)
	if err := validateAddress(&a); err != nil {
		return nil, err
	}

	if a.IsDefault {
		if err := s.repo.ClearDefaults(ctx, uid); err != nil {
			return nil, utils.PersistenceFailureError("Failed to save address", err)
		}
	}

	a.ID = s.newID()
	a.CreatedAt = s.now()
	if err := s.repo.Create(ctx, &a); err != nil {
		return nil, utils.PersistenceFailureError("Failed to save address", err)
	}

	utils.LogInfo("Address %s added for user %s", a.ID, uid)
	s.changed(ctx, uid, a.ID, realtime.ChangeCreated)
	return &a, nil
}

// Update merges patch into the stored address and validates the result.
func (s *AddressService) Update(ctx context.Context, uid, id string, patch models.AddressPatch) (*models.Address, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}

	a, err := s.repo.Get(ctx, uid, id)
	if err != nil {
		return nil, notFoundOr(err, utils.ErrAddressNotFound, "Failed to update address")
	}
	patch.Apply(a)
	if err := validateAddress(a); err != nil {
		return nil, err
	}

	if patch.MakesDefault() {
		if err := s.repo.ClearDefaults(ctx, uid); err != nil {
			return nil, utils.PersistenceFailureError("Failed to update address", err)
		}
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, notFoundOr(err, utils.ErrAddressNotFound, "Failed to update address")
	}

	s.changed(ctx, uid, id, realtime.ChangeUpdated)
	return a, nil
}

// Delete removes the address. Deleting a missing address is not an error
// and no other address is promoted to default.
func (s *AddressService) Delete(ctx context.Context, uid, id string) error {
	if err := requireUser(uid); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, uid, id); err != nil {
		return utils.PersistenceFailureError("Failed to delete address", err)
	}
	s.changed(ctx, uid, id, realtime.ChangeDeleted)
	return nil
}

// SetDefault clears every default for the user, then marks id as default.
func (s *AddressService) SetDefault(ctx context.Context, uid, id string) error {
	if err := requireUser(uid); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, uid, id); err != nil {
		return notFoundOr(err, utils.ErrAddressNotFound, "Failed to update default address")
	}
	if err := s.repo.ClearDefaults(ctx, uid); err != nil {
		return utils.PersistenceFailureError("Failed to update default address", err)
	}
	if err := s.repo.SetDefault(ctx, uid, id); err != nil {
		return notFoundOr(err, utils.ErrAddressNotFound, "Failed to update default address")
	}
	s.changed(ctx, uid, id, realtime.ChangeUpdated)
	return nil
}

// Watch delivers the current sorted list right away and a fresh list after
// every change to the user's addresses, from any client. Calls to onChange
// are serialized.
func (s *AddressService) Watch(ctx context.Context, uid string, onChange func([]models.Address)) (func(), error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}

	// The read and the callback share one critical section so a snapshot
	// is never delivered after a newer one.
	var mu sync.Mutex
	emit := func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		list, err := s.List(ctx, uid)
		if err != nil {
			return err
		}
		onChange(list)
		return nil
	}

	unsubscribe := s.broker.Subscribe(realtime.Query{Collection: realtime.CollectionAddresses, Scope: uid}, func(c realtime.Change) {
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := emit(rctx); err != nil {
			utils.LogError("Failed to refresh addresses for user %s: %v", uid, err)
		}
	})
	if err := emit(ctx); err != nil {
		unsubscribe()
		return nil, err
	}
	return unsubscribe, nil
}

func (s *AddressService) changed(ctx context.Context, uid, id string, kind realtime.ChangeKind) {
	publish(ctx, s.broker, realtime.Change{
		Collection: realtime.CollectionAddresses,
		Scope:      uid,
		DocumentID: id,
		Kind:       kind,
	})
}

func validateAddress(a *models.Address) error {
	utils.SanitizeAddress(a)
	if errs := utils.ValidateAddress(*a); len(errs) > 0 {
		return utils.ValidationFailed("Please fill all required fields", errs)
	}
	return nil
}
