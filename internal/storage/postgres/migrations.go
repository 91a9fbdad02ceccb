package postgres

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id UUID PRIMARY KEY,
    order_number TEXT NOT NULL,
    guest_name TEXT NOT NULL,
    dining_option TEXT NOT NULL,
    timing_mode TEXT NOT NULL,
    scheduled_time TIMESTAMPTZ,
    status TEXT NOT NULL DEFAULT 'pending',
    payment_status TEXT NOT NULL,
    payment_reference TEXT NOT NULL DEFAULT '',
    total_amount NUMERIC(10, 2) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS order_items (
    id UUID PRIMARY KEY,
    order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    menu_item_name TEXT NOT NULL,
    price NUMERIC(10, 2) NOT NULL,
    quantity INTEGER NOT NULL,
    sugar_level TEXT NOT NULL,
    milk_type TEXT NOT NULL,
    add_ons TEXT[] NOT NULL DEFAULT '{}',
    add_ons_total NUMERIC(10, 2) NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS members (
    id UUID PRIMARY KEY,
    phone TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
`
