package sqlinline

const QStatsTotals = `--sql 84fcf4d7-4d03-4c56-9df7-495e580f9d5d
select
    (select count(*) from content),
    (select count(*) from ratings),
    (select count(distinct content_id) from ratings);
`

const QTopContent = `--sql ff608724-29d5-4367-a19f-08dbd56ba528
select id, type, title, description, text_body, metadata,
       prompt, original_prompt, enhanced_prompt,
       model, batch_id, agent_id, generation_params,
       coalesce(score_mean, 0), coalesce(score_count, 0), created_at
from content
where coalesce(score_count, 0) >= 1
order by score_mean desc, score_count desc
limit 5;
`

const QWorstContent = `--sql f1d253b2-dfb1-421e-a91c-5c09579bec27
select id, type, title, description, text_body, metadata,
       prompt, original_prompt, enhanced_prompt,
       model, batch_id, agent_id, generation_params,
       coalesce(score_mean, 0), coalesce(score_count, 0), created_at
from content
where coalesce(score_count, 0) >= 1
order by score_mean asc, score_count desc
limit 5;
`

const QSummaryRated = `--sql 359103cc-3d1a-4990-8e5c-5fe766f9c8fc
select count(distinct content_id)
from ratings
where ($1::text is not null and session_id = $1)
   or ($2::bigint is not null and user_id = $2);
`
