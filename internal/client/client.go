package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrConnectionLost marks transport failures. It is recoverable: the
// realtime consumer reconnects and callers retry or fall back to
// polling.
var ErrConnectionLost = errors.New("connection lost")

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Message string
	Product string
	From    string
	To      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client is one actor's handle on the marketplace API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Order struct {
	ID         string
	CustomerID string
	StoreID    string
	CarrierID  string
	VehicleID  string
	Status     string
	Total      int64
	Items      []OrderItem
}

type OrderItem struct {
	ProductID string
	Name      string
	UnitPrice int64
	Quantity  int32
	LineTotal int64
}

type Route struct {
	OrderID   string
	VehicleID string
	Waypoints []Point
}

type Vehicle struct {
	ID        string
	CarrierID string
	Name      string
	Lat       float64
	Lng       float64
}

type Product struct {
	ID          string
	Name        string
	Description string
}

type StoreProduct struct {
	StoreID     string
	ProductID   string
	ProductName string
	Price       int64
	Quantity    int32
}

type Store struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb struct {
			Error   string `json:"error"`
			Product string `json:"product"`
			From    string `json:"from"`
			To      string `json:"to"`
		}
		if json.NewDecoder(resp.Body).Decode(&eb) == nil {
			apiErr.Message = eb.Error
			apiErr.Product = eb.Product
			apiErr.From = eb.From
			apiErr.To = eb.To
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// catalog and stock

func (c *Client) CreateProduct(ctx context.Context, name, description string) (Product, error) {
	var p Product
	err := c.call(ctx, http.MethodPost, "/products",
		map[string]string{"name": name, "description": description}, &p)
	return p, err
}

func (c *Client) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	var out []Product
	err := c.call(ctx, http.MethodGet, "/products?query="+url.QueryEscape(query), nil, &out)
	return out, err
}

func (c *Client) Stores(ctx context.Context) ([]Store, error) {
	var out []Store
	err := c.call(ctx, http.MethodGet, "/stores", nil, &out)
	return out, err
}

func (c *Client) StoreCatalog(ctx context.Context, storeID string) ([]StoreProduct, error) {
	var out []StoreProduct
	err := c.call(ctx, http.MethodGet, "/stores/"+storeID+"/stock", nil, &out)
	return out, err
}

func (c *Client) LinkStock(ctx context.Context, productID string, price int64, quantity int32) (StoreProduct, error) {
	var sp StoreProduct
	err := c.call(ctx, http.MethodPost, "/stock",
		map[string]any{"productId": productID, "price": price, "quantity": quantity}, &sp)
	return sp, err
}

func (c *Client) Restock(ctx context.Context, productID string, delta int32) (StoreProduct, error) {
	var sp StoreProduct
	err := c.call(ctx, http.MethodPatch, "/stock/"+productID,
		map[string]any{"restockDelta": delta}, &sp)
	return sp, err
}

func (c *Client) UnlinkStock(ctx context.Context, productID string) error {
	return c.call(ctx, http.MethodDelete, "/stock/"+productID, nil, nil)
}

// orders

func (c *Client) SubmitOrder(ctx context.Context, storeID string, items []OrderItem) (Order, error) {
	type item struct {
		ProductID string `json:"productId"`
		Name      string `json:"name"`
		UnitPrice int64  `json:"unitPrice"`
		Quantity  int32  `json:"quantity"`
	}
	req := struct {
		StoreID string `json:"storeId"`
		Items   []item `json:"items"`
	}{StoreID: storeID}
	for _, it := range items {
		req.Items = append(req.Items, item{
			ProductID: it.ProductID, Name: it.Name,
			UnitPrice: it.UnitPrice, Quantity: it.Quantity,
		})
	}

	var o Order
	err := c.call(ctx, http.MethodPost, "/orders", req, &o)
	return o, err
}

func (c *Client) Order(ctx context.Context, id string) (Order, error) {
	var o Order
	err := c.call(ctx, http.MethodGet, "/orders/"+id, nil, &o)
	return o, err
}

func (c *Client) OrderRoute(ctx context.Context, id string) (Route, error) {
	var r Route
	err := c.call(ctx, http.MethodGet, "/orders/"+id+"/route", nil, &r)
	return r, err
}

func (c *Client) CancelOrder(ctx context.Context, id string) (Order, error) {
	var o Order
	err := c.call(ctx, http.MethodDelete, "/orders/"+id, nil, &o)
	return o, err
}

func (c *Client) ApproveOrder(ctx context.Context, id string) (Order, error) {
	var o Order
	err := c.call(ctx, http.MethodPost, "/orders/"+id+"/approve", nil, &o)
	return o, err
}

func (c *Client) AcceptFreight(ctx context.Context, orderID, vehicleID string) (Order, error) {
	var o Order
	err := c.call(ctx, http.MethodPost,
		"/orders/"+orderID+"/accept?vehicleId="+url.QueryEscape(vehicleID), nil, &o)
	return o, err
}

func (c *Client) CompleteDelivery(ctx context.Context, orderID string) (Order, error) {
	var o Order
	err := c.call(ctx, http.MethodPost, "/orders/"+orderID+"/complete", nil, &o)
	return o, err
}

func (c *Client) MyOrders(ctx context.Context, filter string) ([]Order, error) {
	path := "/orders"
	if filter != "" {
		path += "?filter=" + url.QueryEscape(filter)
	}
	var out []Order
	err := c.call(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) AvailableFreights(ctx context.Context) ([]Order, error) {
	var out []Order
	err := c.call(ctx, http.MethodGet, "/freights", nil, &out)
	return out, err
}

// fleet

func (c *Client) RegisterVehicle(ctx context.Context, name string, lat, lng float64) (Vehicle, error) {
	var v Vehicle
	err := c.call(ctx, http.MethodPost, "/vehicles",
		map[string]any{"name": name, "lat": lat, "lng": lng}, &v)
	return v, err
}

func (c *Client) Vehicles(ctx context.Context) ([]Vehicle, error) {
	var out []Vehicle
	err := c.call(ctx, http.MethodGet, "/vehicles", nil, &out)
	return out, err
}

func (c *Client) Vehicle(ctx context.Context, id string) (Vehicle, error) {
	var v Vehicle
	err := c.call(ctx, http.MethodGet, "/vehicles/"+id, nil, &v)
	return v, err
}

func (c *Client) MoveVehicle(ctx context.Context, id string, lat, lng float64) (Vehicle, error) {
	var v Vehicle
	err := c.call(ctx, http.MethodPost, "/vehicles/"+id+"/position",
		map[string]any{"lat": lat, "lng": lng}, &v)
	return v, err
}

func (c *Client) UpdateMyLocation(ctx context.Context, lat, lng float64) error {
	return c.call(ctx, http.MethodPut, "/me/location",
		map[string]any{"lat": lat, "lng": lng}, nil)
}
