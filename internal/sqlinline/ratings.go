package sqlinline

const QInsertRating = `--sql e209c46a-22ae-4adb-9336-9c7b09db6f20
insert into ratings (content_id, user_id, session_id, rating, comment)
values ($1, $2, $3, $4, $5);
`

// Preferred score recomputation path: a stored procedure owned by the
// database. Deployments without it fall back to the client-side aggregate.
const QCallRecomputeScore = `--sql 46fcebc8-c378-4713-b326-d8d83823b6e4
select recompute_score($1);
`

const QSelectRatingValues = `--sql 48bd227c-8fd1-41ee-8cb2-7085fd3113c3
select rating from ratings where content_id = $1;
`
