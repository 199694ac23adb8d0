package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/ikkim/shopfront/internal/gateway"
	"github.com/ikkim/shopfront/pkg/logger"
	"github.com/ikkim/shopfront/pkg/util"
)

// FormatAddress renders an address for an order: the structured parts joined,
// or the stored full address when nothing is structured.
func FormatAddress(addr *model.DeliveryAddress) string {
	if addr == nil {
		return ""
	}
	if joined := util.JoinAddress(addr.Street, addr.Ward, addr.District, addr.Province); joined != "" {
		return joined
	}
	return strings.TrimSpace(addr.FullAddress)
}

type AddressInput struct {
	Street      string   `json:"street"`
	Ward        string   `json:"ward"`
	District    string   `json:"district"`
	Province    string   `json:"province"`
	FullAddress string   `json:"full_address"`
	Phone       string   `json:"phone"`
	PostalCode  string   `json:"postal_code"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	IsDefault   bool     `json:"is_default"`
}

type AddressService interface {
	List(ctx context.Context, userID string) ([]model.DeliveryAddress, error)
	Get(ctx context.Context, userID, addressID string) (*model.DeliveryAddress, error)
	Create(ctx context.Context, userID string, input AddressInput) (*model.DeliveryAddress, error)
	Update(ctx context.Context, userID, addressID string, input AddressInput) (*model.DeliveryAddress, error)
	Delete(ctx context.Context, userID, addressID string) error
	PrepareForEdit(addr *model.DeliveryAddress) *model.DeliveryAddress
}

type addressService struct {
	addresses gateway.AddressGateway
}

func NewAddressService(addresses gateway.AddressGateway) AddressService {
	return &addressService{addresses: addresses}
}

func (s *addressService) List(ctx context.Context, userID string) ([]model.DeliveryAddress, error) {
	addrs, err := s.addresses.ListAddresses(ctx, userID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return []model.DeliveryAddress{}, nil
		}
		logger.Error("Failed to list addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, networkError("list addresses", err)
	}
	return addrs, nil
}

// Get finds one of the user's addresses. The upstream has no single-address read.
func (s *addressService) Get(ctx context.Context, userID, addressID string) (*model.DeliveryAddress, error) {
	addrs, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range addrs {
		if addrs[i].ID == addressID {
			return &addrs[i], nil
		}
	}
	return nil, ErrAddressNotFound
}

func (s *addressService) Create(ctx context.Context, userID string, input AddressInput) (*model.DeliveryAddress, error) {
	addr := &model.DeliveryAddress{OwnerUserID: userID}
	applyAddressInput(addr, input)
	if err := validateAddress(addr); err != nil {
		return nil, err
	}

	logger.Info("Creating address", map[string]interface{}{
		"user_id": userID,
	})

	created, err := s.addresses.CreateAddress(ctx, addr)
	if err != nil {
		logger.Error("Failed to create address", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, networkError("create address", err)
	}
	return created, nil
}

func (s *addressService) Update(ctx context.Context, userID, addressID string, input AddressInput) (*model.DeliveryAddress, error) {
	existing, err := s.Get(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	addr := *existing
	applyAddressInput(&addr, input)
	// a structured edit supersedes the old denormalized text
	if addr.IsStructured() && input.FullAddress == "" {
		addr.FullAddress = util.JoinAddress(addr.Street, addr.Ward, addr.District, addr.Province)
	}
	if err := validateAddress(&addr); err != nil {
		return nil, err
	}

	updated, err := s.addresses.UpdateAddress(ctx, &addr)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		logger.Error("Failed to update address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return nil, networkError("update address", err)
	}
	return updated, nil
}

func (s *addressService) Delete(ctx context.Context, userID, addressID string) error {
	if _, err := s.Get(ctx, userID, addressID); err != nil {
		return err
	}
	if err := s.addresses.DeleteAddress(ctx, addressID); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return ErrAddressNotFound
		}
		return networkError("delete address", err)
	}

	logger.Info("Address deleted", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})
	return nil
}

// PrepareForEdit returns a copy with the structured fields filled from the
// legacy full address when none were stored.
func (s *addressService) PrepareForEdit(addr *model.DeliveryAddress) *model.DeliveryAddress {
	if addr == nil {
		return nil
	}
	cp := *addr
	if cp.IsStructured() || strings.TrimSpace(cp.FullAddress) == "" {
		return &cp
	}

	parts := util.ParseAddress(cp.FullAddress)
	cp.Street = parts.Street
	cp.Ward = parts.Ward
	cp.District = parts.District
	cp.Province = parts.Province
	return &cp
}

// applyAddressInput copies non-empty input fields onto addr.
func applyAddressInput(addr *model.DeliveryAddress, in AddressInput) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&addr.Street, in.Street)
	set(&addr.Ward, in.Ward)
	set(&addr.District, in.District)
	set(&addr.Province, in.Province)
	set(&addr.FullAddress, in.FullAddress)
	set(&addr.Phone, in.Phone)
	set(&addr.PostalCode, in.PostalCode)
	if in.Latitude != nil {
		addr.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		addr.Longitude = in.Longitude
	}
	addr.IsDefault = in.IsDefault
}

func validateAddress(addr *model.DeliveryAddress) error {
	if FormatAddress(addr) == "" {
		return ErrIncompleteAddress
	}
	if strings.TrimSpace(addr.Phone) == "" {
		return ErrMissingPhoneNumber
	}
	return nil
}
