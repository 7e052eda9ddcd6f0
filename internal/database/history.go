package database

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/yishak-cs/cafe_order/internal/logging"
	"github.com/yishak-cs/cafe_order/internal/models"
)

// OrderGraph mirrors placed orders into Neo4j as
// (:Customer)-[:HAS_MADE]->(:Order)-[:HAS_ITEM]->(:Item) and keeps the
// aggregated (:Customer)-[:HAS_ORDERED {times}]->(:Item) relationships
// used for favorites.
type OrderGraph struct {
	client *Neo4jClient
}

// NewOrderGraph creates a new order-history graph
func NewOrderGraph(client *Neo4jClient) *OrderGraph {
	return &OrderGraph{client: client}
}

// EnsureSchema creates the uniqueness constraints the graph relies on
func (g *OrderGraph) EnsureSchema(ctx context.Context) error {
	constraints := []string{
		"CREATE CONSTRAINT customer_key IF NOT EXISTS FOR (c:Customer) REQUIRE c.key IS UNIQUE",
		"CREATE CONSTRAINT order_id IF NOT EXISTS FOR (o:Order) REQUIRE o.id IS UNIQUE",
		"CREATE CONSTRAINT item_id IF NOT EXISTS FOR (i:Item) REQUIRE i.id IS UNIQUE",
	}

	for _, c := range constraints {
		if err := g.client.ExecuteWrite(ctx, c, nil); err != nil {
			return fmt.Errorf("failed to create constraint: %w", err)
		}
	}
	return nil
}

// SyncMenu upserts every menu item as an Item node
func (g *OrderGraph) SyncMenu(ctx context.Context, items []models.MenuItem) error {
	rows := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		rows = append(rows, map[string]interface{}{
			"id":       item.ID,
			"name":     item.Name,
			"price":    item.Price,
			"category": item.Category,
		})
	}

	query := `
		UNWIND $items AS row
		MERGE (i:Item {id: row.id})
		SET i.name = row.name, i.price = row.price, i.category = row.category
	`

	if err := g.client.ExecuteWrite(ctx, query, map[string]interface{}{"items": rows}); err != nil {
		return fmt.Errorf("failed to sync menu items: %w", err)
	}

	logging.Info().Int("items", len(items)).Msg("Menu synced to order graph")
	return nil
}

// orderParams builds the query parameters shared by RecordOrder and
// RecordCancellation. Quantities of repeated items are summed.
func orderParams(order models.Order) map[string]interface{} {
	lines := make([]map[string]interface{}, 0, len(order.Items))
	index := make(map[string]int, len(order.Items))
	for _, l := range order.Items {
		if i, ok := index[l.ItemID]; ok {
			lines[i]["quantity"] = lines[i]["quantity"].(int) + l.Quantity
			continue
		}
		index[l.ItemID] = len(lines)
		lines = append(lines, map[string]interface{}{
			"item_id":  l.ItemID,
			"name":     l.Name,
			"quantity": l.Quantity,
		})
	}

	return map[string]interface{}{
		"customerKey": order.Customer.Key(),
		"name":        order.Customer.Name,
		"orderID":     order.ID,
		"number":      order.Number,
		"total":       order.Total,
		"createdAt":   order.CreatedAt,
		"lines":       lines,
	}
}

// RecordOrder writes a placed order and adds its quantities to the
// customer's HAS_ORDERED relationships. Recording the same order twice is a
// no-op.
func (g *OrderGraph) RecordOrder(ctx context.Context, order models.Order) error {
	params := orderParams(order)

	// o.new marks an Order node created by this call; it is removed before commit.
	createOrder := `
		MERGE (c:Customer {key: $customerKey})
		SET c.name = $name
		MERGE (o:Order {id: $orderID})
		ON CREATE SET o.number = $number, o.total_amount = $total, o.created_at = $createdAt, o.cancelled = false, o.new = true
		MERGE (c)-[:HAS_MADE]->(o)
		WITH o
		WHERE o.new
		UNWIND $lines AS line
		MERGE (i:Item {id: line.item_id})
		ON CREATE SET i.name = line.name
		MERGE (o)-[hi:HAS_ITEM]->(i)
		SET hi.quantity = line.quantity
	`

	updateHasOrdered := `
		MATCH (c:Customer {key: $customerKey})-[:HAS_MADE]->(o:Order {id: $orderID})-[hi:HAS_ITEM]->(i:Item)
		WHERE o.new
		MERGE (c)-[ho:HAS_ORDERED]->(i)
		SET ho.times = COALESCE(ho.times, 0) + hi.quantity
	`

	clearNew := `
		MATCH (o:Order {id: $orderID})
		REMOVE o.new
	`

	err := g.client.ExecuteWriteTransaction(ctx, func(tx neo4j.ManagedTransaction) error {
		for _, q := range []string{createOrder, updateHasOrdered, clearNew} {
			if _, err := tx.Run(ctx, q, params); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record order %s: %w", order.Number, err)
	}

	return nil
}

// RecordCancellation marks a recorded order cancelled and takes its
// quantities back off the customer's HAS_ORDERED relationships. Cancelling
// an order twice, or one that was never recorded, changes nothing.
func (g *OrderGraph) RecordCancellation(ctx context.Context, order models.Order) error {
	query := `
		MATCH (c:Customer {key: $customerKey})-[:HAS_MADE]->(o:Order {id: $orderID})
		WHERE NOT COALESCE(o.cancelled, false)
		SET o.cancelled = true
		WITH c, o
		MATCH (o)-[hi:HAS_ITEM]->(i:Item)
		MATCH (c)-[ho:HAS_ORDERED]->(i)
		SET ho.times = CASE WHEN ho.times > hi.quantity THEN ho.times - hi.quantity ELSE 0 END
	`

	if err := g.client.ExecuteWrite(ctx, query, orderParams(order)); err != nil {
		return fmt.Errorf("failed to record cancellation of %s: %w", order.Number, err)
	}
	return nil
}

// FrequentItems answers: "What does a customer generally order most frequently?"
// Items whose every order was cancelled are left out.
func (g *OrderGraph) FrequentItems(ctx context.Context, customerKey string, limit int) ([]string, error) {
	query := `
		MATCH (c:Customer {key: $customerKey})-[ho:HAS_ORDERED]->(i:Item)
		WHERE ho.times > 0
		RETURN i.id AS item_id, ho.times AS times
		ORDER BY ho.times DESC, i.id ASC
		LIMIT $limit
	`

	params := map[string]interface{}{
		"customerKey": customerKey,
		"limit":       limit,
	}

	results, err := g.client.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get frequent items: %w", err)
	}

	ids := make([]string, 0, len(results))
	for _, result := range results {
		if id, ok := result["item_id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Status returns node and relationship counts for the health endpoint
func (g *OrderGraph) Status(ctx context.Context) (map[string]int, error) {
	query := `
		OPTIONAL MATCH (c:Customer) WITH count(c) as customers
		OPTIONAL MATCH (o:Order) WITH customers, count(o) as orders
		OPTIONAL MATCH ()-[ho:HAS_ORDERED]->() WHERE ho.times > 0 WITH customers, orders, count(ho) as has_ordered
		RETURN customers, orders, has_ordered
	`

	results, err := g.client.ExecuteRead(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	status := map[string]int{"customers": 0, "orders": 0, "has_ordered": 0}
	if len(results) == 0 {
		return status, nil
	}
	for key := range status {
		if v, ok := results[0][key].(int64); ok {
			status[key] = int(v)
		}
	}
	return status, nil
}
