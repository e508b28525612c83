package sqlinline

const QUpsertBatch = `--sql 50c071fd-7c67-4c0b-adf0-22c2cba864c9
insert into batches (id, prompt, model, type, params, count, created_by_user_id, agent_id, status, created_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
on conflict (id) do update
set prompt = excluded.prompt,
    model = excluded.model,
    type = excluded.type,
    params = excluded.params,
    count = excluded.count,
    status = excluded.status;
`

const QUpdateBatchStatus = `--sql 7d0b3413-aa61-4206-b0c9-69c1c1a73274
update batches
set status = $2,
    params = case when $3::text is null then params
                  else params || jsonb_build_object('error', $3::text, 'failed_at', now())
             end
where id = $1;
`
