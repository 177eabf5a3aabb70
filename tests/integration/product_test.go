//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != seededProducts {
		t.Fatalf("expected %d products, got %d", seededProducts, len(products))
	}
}

func TestListProducts_Fields(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)

	var shirt *productResponse
	for i := range products {
		if products[i].ID == "P1" {
			shirt = &products[i]
			break
		}
	}

	if shirt == nil {
		t.Fatal("product with ID 'P1' not found")
	}
	if shirt.Title != "Classic White Shirt" {
		t.Errorf("title: got %q, want %q", shirt.Title, "Classic White Shirt")
	}
	if shirt.Price != 1999 {
		t.Errorf("price: got %d, want 1999", shirt.Price)
	}
	if shirt.SpecialCoupon == nil || *shirt.SpecialCoupon != "SHIRT50" {
		t.Errorf("specialCoupon: got %v, want SHIRT50", shirt.SpecialCoupon)
	}
	if shirt.Image == "" {
		t.Error("image is empty")
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/products/P2")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	product := decodeJSON[productResponse](t, resp)
	if product.ID != "P2" {
		t.Errorf("id: got %q, want %q", product.ID, "P2")
	}
	if product.SpecialCoupon != nil {
		t.Errorf("specialCoupon: got %q, want null", *product.SpecialCoupon)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/P999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}

func TestCreateProduct_RequiresAdmin(t *testing.T) {
	body := map[string]any{"title": "Socks", "price": 499, "stock": 3}

	resp := doPost(t, "/api/products", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp = doAdmin(t, http.MethodPost, "/api/products", body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	created := decodeJSON[productResponse](t, resp)
	t.Cleanup(func() {
		resp := doAdmin(t, http.MethodDelete, "/api/products/"+created.ID, nil)
		resp.Body.Close()
	})
	if created.Price != 499 || created.Stock != 3 {
		t.Errorf("created: got price %d stock %d", created.Price, created.Stock)
	}
}
