package sqlinline

const QSelectAgentByID = `--sql 36d06a73-27e0-42bb-83ca-69946ece2cd3
select id, name, type, system_prompt, model, coalesce(config, '{}'::jsonb), is_active, created_at
from agents
where id = $1;
`

const QSelectFirstActiveAgentByType = `--sql 277c093c-fcc5-4996-b7b9-0ccd5a0d630e
select id, name, type, system_prompt, model, coalesce(config, '{}'::jsonb), is_active, created_at
from agents
where type = $1 and is_active
order by created_at asc
limit 1;
`

const QListActiveAgents = `--sql e3d637d7-15f9-4b95-9c7f-bc41f78a6991
select id, name, type, system_prompt, model, coalesce(config, '{}'::jsonb), is_active, created_at
from agents
where is_active
order by type asc;
`

// Aggregated insight summary via the optional stored function. Deployments
// without it fall back to scanning recent memories client-side.
const QAgentInsights = `--sql 6a95f352-1b41-49a0-bf37-6550d0b9e9f9
select total_memories, liked_count, disliked_count, common_liked_patterns, common_disliked_patterns
from get_agent_insights($1);
`

const QUpsertAgent = `--sql 1a484c61-eea3-440d-bf12-f48ab611d282
insert into agents (name, type, system_prompt, model, config, is_active)
values ($1, $2, $3, $4, $5, true)
on conflict (name) do update
set type = excluded.type,
    system_prompt = excluded.system_prompt,
    model = excluded.model,
    config = excluded.config,
    is_active = true
returning id;
`

const QInsertAgentMemory = `--sql 3eb5ad79-13f3-4d95-a0fc-2f26234fa5b2
insert into agent_memories (agent_id, content_id, original_prompt, enhanced_prompt, rating, analysis)
values ($1, $2, $3, $4, $5, $6);
`

const QSelectAgentMemories = `--sql 6aa1d0c1-756d-4a80-843e-00c50ad859b0
select id, agent_id, content_id, original_prompt, enhanced_prompt, rating, coalesce(analysis, '{}'::jsonb), created_at
from agent_memories
where agent_id = $1
order by created_at desc
limit $2 offset $3;
`
