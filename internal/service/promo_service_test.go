package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"

	"food-order-service/internal/cache"
	"food-order-service/internal/models"
	"food-order-service/internal/repository"
)

type fakePromoStore struct {
	byCode     map[string]*models.PromoCode
	getCalls   int
	created    []models.PromoCode
	createErrs []error
	updateErr  error
	deleteErr  error
}

func (f *fakePromoStore) GetByCode(_ context.Context, code string) (*models.PromoCode, error) {
	f.getCalls++
	return f.byCode[code], nil
}

func (f *fakePromoStore) List(context.Context, *bool) ([]models.PromoCode, error) {
	return nil, nil
}

func (f *fakePromoStore) Create(_ context.Context, p *models.PromoCode) error {
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	p.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *p)
	return nil
}

func (f *fakePromoStore) Update(context.Context, *models.PromoCode) error { return f.updateErr }
func (f *fakePromoStore) Delete(context.Context, string) error            { return f.deleteErr }

func newTestPromoService(store *fakePromoStore) *PromoService {
	return NewPromoService(store, cache.NewPromoCache(time.Minute))
}

func dupErr() error { return &pq.Error{Code: uniqueViolation} }

func TestValidate_CachesRecord(t *testing.T) {
	store := &fakePromoStore{byCode: map[string]*models.PromoCode{
		"SAVE10": {Code: "SAVE10", Kind: models.KindPercent, Value: dec("10"), Active: true},
	}}
	svc := newTestPromoService(store)

	for i := 0; i < 2; i++ {
		res, err := svc.Validate(context.Background(), "SAVE10", dec("100"), time.Now())
		if err != nil {
			t.Fatal(err)
		}
		if !res.Valid || !res.Discount.Equal(dec("10")) {
			t.Fatalf("attempt %d: got %+v, want valid with discount 10", i, res)
		}
	}
	if store.getCalls != 1 {
		t.Errorf("store reads = %d, want 1 (second hit served from cache)", store.getCalls)
	}
}

func TestValidate_EmptyCode(t *testing.T) {
	store := &fakePromoStore{}
	svc := newTestPromoService(store)

	res, err := svc.Validate(context.Background(), "", dec("100"), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Valid || !res.Discount.IsZero() {
		t.Errorf("got %+v, want valid with zero discount", res)
	}
	if store.getCalls != 0 {
		t.Error("empty code must not touch the store")
	}
}

func TestCreate_DuplicateCode(t *testing.T) {
	store := &fakePromoStore{createErrs: []error{dupErr()}}
	svc := newTestPromoService(store)

	p := models.PromoCode{Code: "SAVE10", Kind: models.KindPercent, Value: dec("10")}
	if err := svc.Create(context.Background(), &p); !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("got %v, want ErrDuplicateCode", err)
	}
}

func TestCreate_InvalidDefinitions(t *testing.T) {
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	cases := []struct {
		name string
		p    models.PromoCode
	}{
		{"unknown kind", models.PromoCode{Code: "X", Kind: "bogo", Value: dec("10")}},
		{"zero value", models.PromoCode{Code: "X", Kind: models.KindPercent, Value: dec("0")}},
		{"negative value", models.PromoCode{Code: "X", Kind: models.KindFixedAmount, Value: dec("-5")}},
		{"window reversed", models.PromoCode{Code: "X", Kind: models.KindPercent, Value: dec("10"), ValidFrom: &from, ValidTo: &to}},
	}
	svc := newTestPromoService(&fakePromoStore{})
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := c.p
			if err := svc.Create(context.Background(), &p); !errors.Is(err, ErrInvalidPromo) {
				t.Errorf("got %v, want ErrInvalidPromo", err)
			}
		})
	}
}

func TestCreate_DefaultsKindToPercent(t *testing.T) {
	store := &fakePromoStore{}
	svc := newTestPromoService(store)

	p := models.PromoCode{Code: "SAVE10", Value: dec("10")}
	if err := svc.Create(context.Background(), &p); err != nil {
		t.Fatal(err)
	}
	if len(store.created) != 1 || store.created[0].Kind != models.KindPercent {
		t.Errorf("created = %+v, want kind defaulted to percent", store.created)
	}
}

func TestGenerate_RetriesOnCollision(t *testing.T) {
	store := &fakePromoStore{createErrs: []error{dupErr()}}
	svc := newTestPromoService(store)

	created, err := svc.Generate(context.Background(), GenerateRequest{
		Prefix: "SUMMER-",
		Length: 6,
		Count:  3,
		Kind:   models.KindPercent,
		Value:  dec("15"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if created != 3 || len(store.created) != 3 {
		t.Fatalf("created %d / stored %d, want 3 despite one collision", created, len(store.created))
	}
	for _, p := range store.created {
		if !strings.HasPrefix(p.Code, "SUMMER-") || len(p.Code) != len("SUMMER-")+6 {
			t.Errorf("code %q does not match prefix + 6 chars", p.Code)
		}
		if !p.Active {
			t.Errorf("generated code %q must start active", p.Code)
		}
	}
}

func TestGenerate_RejectsBadShape(t *testing.T) {
	svc := newTestPromoService(&fakePromoStore{})
	for _, req := range []GenerateRequest{
		{Length: 0, Count: 3, Value: dec("10")},
		{Length: 6, Count: 0, Value: dec("10")},
	} {
		if _, err := svc.Generate(context.Background(), req); !errors.Is(err, ErrInvalidPromo) {
			t.Errorf("Generate(%+v): got %v, want ErrInvalidPromo", req, err)
		}
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestPromoService(&fakePromoStore{updateErr: sql.ErrNoRows})
	p := models.PromoCode{Code: "GHOST", Kind: models.KindPercent, Value: dec("10")}
	if err := svc.Update(context.Background(), &p); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("got %v, want ErrPromoNotFound", err)
	}
}

func TestDelete_ErrorMapping(t *testing.T) {
	svc := newTestPromoService(&fakePromoStore{deleteErr: sql.ErrNoRows})
	if err := svc.Delete(context.Background(), "GHOST"); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("got %v, want ErrPromoNotFound", err)
	}

	svc = newTestPromoService(&fakePromoStore{deleteErr: repository.ErrPromoInUse})
	if err := svc.Delete(context.Background(), "USED"); !errors.Is(err, repository.ErrPromoInUse) {
		t.Fatalf("got %v, want ErrPromoInUse passed through", err)
	}
}
