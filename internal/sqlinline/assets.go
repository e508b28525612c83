package sqlinline

const QInsertAsset = `--sql d9a606b9-6736-4e5e-bc5f-df19338353a5
insert into assets (content_id, url, mime, width, height, duration, size_bytes, poster_url, ord)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

const QSelectAssetsByContent = `--sql 984ecc48-2369-4153-96d8-75e1dce5931c
select id, content_id, url, mime, width, height, duration, size_bytes, poster_url, ord
from assets
where content_id = $1
order by ord asc;
`

const QDeleteAssetsByContent = `--sql 02096a6d-9207-4631-8733-ae752f89ede7
delete from assets where content_id = $1;
`
