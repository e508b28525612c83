package sqlinline

// Full insert carrying every optional provenance column. When the deployed
// schema lacks one of them the store retries with QInsertContentBase.
const QInsertContentFull = `--sql 716a653a-1578-441b-a250-1532ee2bb787
insert into content (
    type, title, description, text_body, metadata,
    prompt, original_prompt, enhanced_prompt,
    model, batch_id, agent_id, generation_params
)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
returning id;
`

const QInsertContentBase = `--sql e66567d4-da2c-4b7c-8c65-9ed35d29961b
insert into content (type, title, description, text_body, metadata)
values ($1, $2, $3, $4, $5)
returning id;
`

const QUpdateContentFull = `--sql e52ad598-18a2-42b8-abf7-abf7e1c408b2
update content
set type = $2,
    title = $3,
    description = $4,
    text_body = $5,
    metadata = $6,
    prompt = $7,
    original_prompt = $8,
    enhanced_prompt = $9,
    model = $10,
    batch_id = $11,
    agent_id = $12,
    generation_params = $13
where id = $1
returning id;
`

const QUpdateContentBase = `--sql b9548050-b2c7-41ef-85ac-0046db52b383
update content
set type = $2,
    title = $3,
    description = $4,
    text_body = $5,
    metadata = $6
where id = $1
returning id;
`

const QSelectContentByID = `--sql bf688533-da7f-4ce1-9f25-93a2c6c6a0bd
select id, type, title, description, text_body, metadata,
       prompt, original_prompt, enhanced_prompt,
       model, batch_id, agent_id, generation_params,
       coalesce(score_mean, 0), coalesce(score_count, 0), created_at
from content
where id = $1;
`

const QListContent = `--sql 59798c91-ecf1-4bc9-a31a-1609db2bc652
select id, type, title, description, text_body, metadata,
       prompt, original_prompt, enhanced_prompt,
       model, batch_id, agent_id, generation_params,
       coalesce(score_mean, 0), coalesce(score_count, 0), created_at
from content
order by id desc
limit $1 offset $2;
`

const QCountContent = `--sql 6e2d2e0f-c23f-4c5c-bcaa-a543b90e4874
select count(*) from content;
`

const QDeleteContent = `--sql e16dda93-5d19-4a2b-8593-a61887814270
delete from content where id = $1;
`

// Next unrated content for a rater, skipping anything the session or user has
// already voted on. Ascending order keeps newer batches from shadowing older
// ones in the feed.
const QSelectNextContent = `--sql 163ff9f4-f92a-482a-b275-0fb554d34921
select c.id, c.type, c.title, c.description, c.text_body, c.metadata,
       c.prompt, c.original_prompt, c.enhanced_prompt,
       c.model, c.batch_id, c.agent_id, c.generation_params,
       coalesce(c.score_mean, 0), coalesce(c.score_count, 0), c.created_at
from content c
where c.type = any($1)
  and not exists (
      select 1 from ratings r
      where r.content_id = c.id
        and (($2::text is not null and r.session_id = $2)
          or ($3::bigint is not null and r.user_id = $3))
  )
order by c.id asc
limit 1;
`

const QSelectNextContentDesc = `--sql c2eabb3e-80dd-4833-b5da-345937f6ca3f
select c.id, c.type, c.title, c.description, c.text_body, c.metadata,
       c.prompt, c.original_prompt, c.enhanced_prompt,
       c.model, c.batch_id, c.agent_id, c.generation_params,
       coalesce(c.score_mean, 0), coalesce(c.score_count, 0), c.created_at
from content c
where c.type = any($1)
  and not exists (
      select 1 from ratings r
      where r.content_id = c.id
        and (($2::text is not null and r.session_id = $2)
          or ($3::bigint is not null and r.user_id = $3))
  )
order by c.id desc
limit 1;
`

const QUpdateContentScore = `--sql 51378ba9-af50-4a29-bae1-97f20f1a6f5a
update content
set score_mean = $2, score_count = $3
where id = $1;
`
