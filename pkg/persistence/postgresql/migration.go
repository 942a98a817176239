package postgresql

// migrations returns the ordered schema migrations for the PostgreSQL
// persistence layer.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflows (
				id UUID PRIMARY KEY,
				tenant_id TEXT NOT NULL,
				name TEXT NOT NULL,
				nodes JSONB NOT NULL DEFAULT '[]',
				edges JSONB NOT NULL DEFAULT '[]',
				variables JSONB NOT NULL DEFAULT '{}',
				schedule TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX IF NOT EXISTS idx_workflows_tenant ON workflows (tenant_id) WHERE deleted_at IS NULL;
		`,
		2: `
			CREATE TABLE IF NOT EXISTS executions (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL,
				tenant_id TEXT NOT NULL,
				status TEXT NOT NULL,
				trigger_data JSONB NOT NULL DEFAULT '{}',
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE,
				duration_ms BIGINT,
				error_message TEXT NOT NULL DEFAULT '',
				claimed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX IF NOT EXISTS idx_executions_workflow ON executions (workflow_id);
			CREATE INDEX IF NOT EXISTS idx_executions_tenant_status ON executions (tenant_id, status);
		`,
		3: `
			CREATE TABLE IF NOT EXISTS execution_steps (
				id UUID PRIMARY KEY,
				execution_id UUID NOT NULL,
				node_id TEXT NOT NULL,
				node_type TEXT NOT NULL,
				status TEXT NOT NULL,
				input_data JSONB,
				output_data JSONB,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE,
				duration_ms BIGINT,
				error_message TEXT NOT NULL DEFAULT '',
				retry_count INTEGER NOT NULL DEFAULT 0,
				next_retry_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX IF NOT EXISTS idx_execution_steps_execution ON execution_steps (execution_id, started_at);
		`,
		4: `
			CREATE TABLE IF NOT EXISTS tasks (
				id UUID PRIMARY KEY,
				tenant_id TEXT NOT NULL,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				assigned_to TEXT NOT NULL DEFAULT '',
				due_date TEXT NOT NULL DEFAULT '',
				priority TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_tasks_tenant ON tasks (tenant_id);
		`,
		5: `
			CREATE TABLE IF NOT EXISTS contacts (
				id UUID PRIMARY KEY,
				tenant_id TEXT NOT NULL,
				name TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL DEFAULT '',
				phone TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT ''
			);

			CREATE TABLE IF NOT EXISTS leads (
				id UUID PRIMARY KEY,
				tenant_id TEXT NOT NULL,
				name TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT '',
				score DOUBLE PRECISION NOT NULL DEFAULT 0,
				owner TEXT NOT NULL DEFAULT ''
			);

			CREATE TABLE IF NOT EXISTS projects (
				id UUID PRIMARY KEY,
				tenant_id TEXT NOT NULL,
				name TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT '',
				due_date TEXT NOT NULL DEFAULT ''
			);

			CREATE INDEX IF NOT EXISTS idx_contacts_tenant ON contacts (tenant_id);
			CREATE INDEX IF NOT EXISTS idx_leads_tenant ON leads (tenant_id);
			CREATE INDEX IF NOT EXISTS idx_projects_tenant ON projects (tenant_id);
		`,
	}
}
