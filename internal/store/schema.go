package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS plans (
    plan_id              TEXT PRIMARY KEY,
    created_at           TEXT NOT NULL,
    city                 TEXT NOT NULL,
    total_budget         REAL NOT NULL,
    percent_basis        TEXT NOT NULL,
    sum_of_amounts       REAL NOT NULL,
    plan_text            TEXT NOT NULL,
    selected             TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS plan_items (
    plan_id              TEXT NOT NULL REFERENCES plans(plan_id) ON DELETE CASCADE,
    position             INTEGER NOT NULL,
    category             TEXT NOT NULL,
    amount               REAL NOT NULL,
    percent_of_total     REAL NOT NULL,
    PRIMARY KEY (plan_id, position)
);

CREATE INDEX IF NOT EXISTS idx_plans_created ON plans(created_at);
`
